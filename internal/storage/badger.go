package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"xvidbot/internal/domain"
)

// BadgerRepository implements the Repository interface using BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository opens the database at dbPath.
// An empty dbPath keeps everything in memory, so preferences last as long as the process.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	if dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %q: %w", dbPath, err)
	}
	logger.WithField("in_memory", dbPath == "").Info("BadgerDB opened")

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	r.log.Info("BadgerDB closed.")
	return nil
}

// generateQualityKey creates the key holding a user's quality preference.
// Format: user:{userID}:quality
func generateQualityKey(userID int64) []byte {
	return []byte(fmt.Sprintf("user:%d:quality", userID))
}

// GetQuality reads the stored preference; unknown users get domain.DefaultQuality.
func (r *BadgerRepository) GetQuality(ctx context.Context, userID int64) (domain.Quality, error) {
	log := r.log.WithField("user_id", userID)

	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(generateQualityKey(userID))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.DefaultQuality, nil
	}
	if err != nil {
		log.WithError(err).Error("Failed to read quality from BadgerDB")
		return domain.DefaultQuality, fmt.Errorf("failed to get quality for user %d: %w", userID, err)
	}

	q, err := domain.ParseQuality(string(raw))
	if err != nil {
		log.WithError(err).Warn("Stored quality is invalid, using default")
		return domain.DefaultQuality, nil
	}
	return q, nil
}

// SetQuality stores or overwrites the user's preference.
func (r *BadgerRepository) SetQuality(ctx context.Context, userID int64, quality domain.Quality) error {
	log := r.log.WithFields(logrus.Fields{
		"user_id": userID,
		"quality": quality.String(),
	})

	if !quality.Valid() {
		return fmt.Errorf("refusing to store quality %q", quality)
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(generateQualityKey(userID), []byte(quality)))
	})
	if err != nil {
		log.WithError(err).Error("Failed to save quality to BadgerDB")
		return fmt.Errorf("failed to save quality: %w", err)
	}

	log.Info("Quality preference saved")
	return nil
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
