package statement

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	uploadBucketName = "uploads"
	reportBucketName = "reports"
)

// DB defines the interface for database operations
type DB interface {
	// SaveUpload saves an upload record
	SaveUpload(upload *Upload) error

	// GetUpload retrieves an upload by ID
	GetUpload(id string) (*Upload, error)

	// ListUploads returns all uploads
	ListUploads() ([]*Upload, error)

	// DeleteUpload removes an upload record
	DeleteUpload(id string) error

	// SaveReport saves a bulk-save report
	SaveReport(report *SaveReport) error

	// GetReport retrieves a report by ID
	GetReport(id string) (*SaveReport, error)

	// ListReports returns all reports
	ListReports() ([]*SaveReport, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database file and its buckets
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(uploadBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(reportBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveUpload saves an upload record
func (b *BoltDB) SaveUpload(upload *Upload) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(uploadBucketName))
		data, err := json.Marshal(upload)
		if err != nil {
			return fmt.Errorf("marshaling upload: %w", err)
		}
		return bucket.Put([]byte(upload.ID), data)
	})
}

// GetUpload retrieves an upload by ID
func (b *BoltDB) GetUpload(id string) (*Upload, error) {
	var upload *Upload
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(uploadBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("upload not found: %s", id)
		}
		return json.Unmarshal(data, &upload)
	})
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// ListUploads returns all uploads
func (b *BoltDB) ListUploads() ([]*Upload, error) {
	uploads := make([]*Upload, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(uploadBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var upload Upload
			if err := json.Unmarshal(v, &upload); err != nil {
				return fmt.Errorf("unmarshaling upload: %w", err)
			}
			uploads = append(uploads, &upload)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

// DeleteUpload removes an upload record
func (b *BoltDB) DeleteUpload(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(uploadBucketName))
		return bucket.Delete([]byte(id))
	})
}

// SaveReport saves a bulk-save report
func (b *BoltDB) SaveReport(report *SaveReport) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(reportBucketName))
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		return bucket.Put([]byte(report.ID), data)
	})
}

// GetReport retrieves a report by ID
func (b *BoltDB) GetReport(id string) (*SaveReport, error) {
	var report *SaveReport
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(reportBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("report not found: %s", id)
		}
		return json.Unmarshal(data, &report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns all reports
func (b *BoltDB) ListReports() ([]*SaveReport, error) {
	reports := make([]*SaveReport, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(reportBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var report SaveReport
			if err := json.Unmarshal(v, &report); err != nil {
				return fmt.Errorf("unmarshaling report: %w", err)
			}
			reports = append(reports, &report)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
