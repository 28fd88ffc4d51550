package scanning

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("RemoteOCR", func() {
	var (
		server  *ghttp.Server
		scanner *RemoteOCR
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner, err = NewRemoteOCR(server.URL())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	When("created without a base URL", func() {
		It("returns an error", func() {
			_, err := NewRemoteOCR("")
			Expect(err).To(HaveOccurred())
		})
	})

	When("the service answers with text and parsed lines", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/upload/receipt"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]interface{}{
					"text":   "COFFEE SHOP 4.50\nPage 1",
					"parsed": []interface{}{"COFFEE SHOP 4.50", map[string]interface{}{"description": "TAXI 12.00"}},
				}),
			))
		})

		It("returns both shapes in the scan result", func() {
			result, err := scanner.ExtractText([]byte("fake-image"), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(Equal("COFFEE SHOP 4.50\nPage 1"))

			items := result.LineItems()
			Expect(items).To(HaveLen(2))
			Expect(items[1].String()).To(Equal("TAXI 12.00"))
		})
	})

	When("the service answers with an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusBadGateway, "ocr backend down"))
		})

		It("surfaces the status and body", func() {
			_, err := scanner.ExtractText([]byte("fake-image"), "image/png")
			Expect(err).To(MatchError(ContainSubstring("status 502")))
			Expect(err).To(MatchError(ContainSubstring("ocr backend down")))
		})
	})

	When("the service answers with an empty result", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]interface{}{}))
		})

		It("returns an error", func() {
			_, err := scanner.ExtractText([]byte("fake-image"), "image/png")
			Expect(err).To(MatchError(ContainSubstring("no text")))
		})
	})
})
