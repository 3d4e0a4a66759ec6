package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"dialoguehub/pkg/domain"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const migrateLockID int64 = 51720451

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&DialogueModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// ListDialogues returns every record ordered by number.
func (s *GormStore) ListDialogues(ctx context.Context) ([]domain.Dialogue, error) {
	var models []DialogueModel
	if err := s.db.WithContext(ctx).Order("number ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Dialogue, 0, len(models))
	for _, m := range models {
		d, err := dialogueFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, nil
}

// GetDialogue returns one record.
func (s *GormStore) GetDialogue(ctx context.Context, number int) (domain.Dialogue, bool, error) {
	var model DialogueModel
	if err := s.db.WithContext(ctx).First(&model, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Dialogue{}, false, nil
		}
		return domain.Dialogue{}, false, err
	}
	d, err := dialogueFromModel(model)
	if err != nil {
		return domain.Dialogue{}, false, err
	}
	return d, true, nil
}

// ReplaceHighlights upserts the record and overwrites its highlights.
func (s *GormStore) ReplaceHighlights(ctx context.Context, number int, highlights []domain.Highlight) error {
	raw, err := json.Marshal(normalizeHighlights(highlights))
	if err != nil {
		return fmt.Errorf("encode highlights: %w", err)
	}
	return upsertHighlights(s.db.WithContext(ctx), number, raw, time.Now().UTC()).Error
}

func upsertHighlights(tx *gorm.DB, number int, raw []byte, now time.Time) *gorm.DB {
	model := DialogueModel{
		Number:     number,
		Title:      domain.DefaultTitle(number),
		Highlights: datatypes.JSON(raw),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"highlights", "updated_at"}),
	}).Create(&model)
}

// ImportTranscript fills transcript_text when it is still empty. The
// conditional ON CONFLICT update leaves an already imported text untouched.
func (s *GormStore) ImportTranscript(ctx context.Context, number int, text string) (string, error) {
	if err := upsertTranscript(s.db.WithContext(ctx), number, text, time.Now().UTC()).Error; err != nil {
		return "", fmt.Errorf("import transcript: %w", err)
	}
	stored, ok, err := s.GetDialogue(ctx, number)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("import transcript: dialogue %d missing after upsert", number)
	}
	return stored.TranscriptText, nil
}

func upsertTranscript(tx *gorm.DB, number int, text string, now time.Time) *gorm.DB {
	model := DialogueModel{
		Number:         number,
		Title:          domain.DefaultTitle(number),
		TranscriptText: text,
		Highlights:     datatypes.JSON("[]"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"transcript_text", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "dialogue_models.transcript_text = ''"},
		}},
	}).Create(&model)
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialogueFromModel(m DialogueModel) (domain.Dialogue, error) {
	var highlights []domain.Highlight
	if len(m.Highlights) > 0 {
		if err := json.Unmarshal(m.Highlights, &highlights); err != nil {
			return domain.Dialogue{}, fmt.Errorf("decode highlights of dialogue %d: %w", m.Number, err)
		}
	}
	return domain.Dialogue{
		Number:         m.Number,
		Title:          m.Title,
		AudioDriveID:   m.AudioDriveID,
		TranscriptText: m.TranscriptText,
		Highlights:     normalizeHighlights(highlights),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}
