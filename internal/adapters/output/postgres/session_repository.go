package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"claritas/internal/domain"
	"claritas/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var _ output.SessionStore = (*SessionRepository)(nil)

// sessionRow struct - table layout of an assessment session
type sessionRow struct {
	Seq            uint      `gorm:"primaryKey;autoIncrement"`
	ID             string    `gorm:"type:uuid;uniqueIndex;not null"`
	Date           time.Time `gorm:"type:timestamptz;not null"`
	TaskType       string    `gorm:"type:varchar(32);not null"`
	Caregiver      string    `gorm:"type:varchar(200)"`
	Patient        string    `gorm:"type:varchar(100)"`
	SpeechFluency  float64   `gorm:"not null"`
	LexicalScore   float64   `gorm:"not null"`
	CoherenceScore float64   `gorm:"not null"`
	RiskBand       string    `gorm:"type:varchar(32)"`
	Summary        string    `gorm:"type:text"`
	Technical      *string   `gorm:"type:text"`
	CreatedAt      time.Time
}

// TableName func
func (sessionRow) TableName() string {
	return "assessment_sessions"
}

// SessionRepository struct - Secondary/Driven adapter for PostgreSQL
type SessionRepository struct {
	dbGorm *gorm.DB
}

// NewSessionRepository func - Creates new PostgreSQL repository and migrates its table
func NewSessionRepository(dbGorm *gorm.DB) (*SessionRepository, error) {
	if dbGorm == nil {
		return nil, errors.New("an error when connect database")
	}
	logrus.Info("Migrate database ...")
	if err := dbGorm.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return &SessionRepository{
		dbGorm: dbGorm,
	}, nil
}

// List func - Returns every session ordered by insertion
func (p *SessionRepository) List(ctx context.Context) []domain.Session {
	var rows []sessionRow
	if err := p.dbGorm.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		logrus.Errorln(err)
		return []domain.Session{}
	}
	sessions := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions
}

// Append func - Inserts a new session row
func (p *SessionRepository) Append(ctx context.Context, session domain.Session) error {
	row := newSessionRow(session)
	tx := p.dbGorm.WithContext(ctx).Create(&row)
	if tx.Error != nil {
		logrus.Errorln(tx.Error)
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateSession
		}
		return fmt.Errorf("%w: %v", domain.ErrStorage, tx.Error)
	}
	return nil
}

// GetByID func - Finds one session by its UUID
func (p *SessionRepository) GetByID(ctx context.Context, id string) (domain.Session, bool) {
	var row sessionRow
	err := p.dbGorm.WithContext(ctx).Where(map[string]interface{}{"id": id}).Limit(1).Find(&row).Error
	if err != nil {
		logrus.Errorln(err)
		return domain.Session{}, false
	}
	if row.ID == "" {
		return domain.Session{}, false
	}
	return row.toDomain(), true
}

func newSessionRow(session domain.Session) sessionRow {
	row := sessionRow{
		ID:             session.ID,
		Date:           session.Date.Truncate(time.Microsecond),
		TaskType:       string(session.TaskType),
		Caregiver:      session.Caregiver,
		Patient:        session.Patient,
		SpeechFluency:  session.Scores.SpeechFluency,
		LexicalScore:   session.Scores.LexicalScore,
		CoherenceScore: session.Scores.CoherenceScore,
		RiskBand:       string(session.RiskBand),
		Summary:        session.Summary,
	}
	if len(session.Technical) > 0 {
		technical := string(session.Technical)
		row.Technical = &technical
	}
	return row
}

func (r sessionRow) toDomain() domain.Session {
	session := domain.Session{
		ID:        r.ID,
		Date:      r.Date.UTC(),
		TaskType:  domain.TaskType(r.TaskType),
		Caregiver: r.Caregiver,
		Patient:   r.Patient,
		Scores: domain.Scores{
			SpeechFluency:  r.SpeechFluency,
			LexicalScore:   r.LexicalScore,
			CoherenceScore: r.CoherenceScore,
		},
		RiskBand: domain.RiskBand(r.RiskBand),
		Summary:  r.Summary,
	}
	if r.Technical != nil {
		session.Technical = json.RawMessage(*r.Technical)
	}
	return session
}
