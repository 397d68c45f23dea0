// Package registration admits residents listed on the hostel roster.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

const hostelIDPrefix = "SNG"

// Registration failures reported to the applicant.
var (
	ErrInvalidRequest    = errors.New("name, department, program and password are required")
	ErrNotOnRoster       = errors.New("name does not match any roster entry")
	ErrRosterMismatch    = errors.New("department or program does not match the roster")
	ErrIncompleteRoster  = errors.New("roster entry is missing program or registration date")
	ErrAlreadyRegistered = errors.New("an account with this hostel id already exists")
	ErrRosterUnavailable = errors.New("roster source is not configured")
)

// RosterSource reads a rectangular range of the roster sheet.
type RosterSource interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Request is a self-registration attempt.
type Request struct {
	Name       string `json:"name" binding:"required"`
	Department string `json:"department" binding:"required"`
	Program    string `json:"program" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Service registers and approves residents.
type Service struct {
	store       repository.StudentStore
	roster      *Roster
	source      RosterSource
	rosterRange string
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires the registration flow. source may be nil, in which case
// the roster can only be filled through Roster.Replace.
func NewService(store repository.StudentStore, roster *Roster, source RosterSource, rosterRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if roster == nil {
		roster = NewRoster()
	}
	return &Service{
		store:       store,
		roster:      roster,
		source:      source,
		rosterRange: rosterRange,
		logger:      logger,
		now:         time.Now,
	}
}

// ReloadRoster replaces the roster with the sheet's current contents and
// returns the new version.
func (s *Service) ReloadRoster(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, ErrRosterUnavailable
	}

	rows, err := s.source.ReadRange(ctx, s.rosterRange)
	if err != nil {
		return 0, fmt.Errorf("read roster: %w", err)
	}
	entries, err := ParseRosterRows(rows)
	if err != nil {
		return 0, err
	}

	version := s.roster.Replace(entries, s.now())
	s.logger.Info("roster reloaded", zap.Int("version", version), zap.Int("entries", len(entries)))
	return version, nil
}

// Register creates a student account from a roster entry.
func (s *Service) Register(ctx context.Context, req Request) (*models.Student, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Department) == "" ||
		strings.TrimSpace(req.Program) == "" || req.Password == "" {
		return nil, ErrInvalidRequest
	}

	entry, ok := s.roster.Lookup(req.Name)
	if !ok {
		return nil, ErrNotOnRoster
	}
	if !strings.EqualFold(entry.Department, strings.TrimSpace(req.Department)) ||
		!strings.EqualFold(entry.Program, strings.TrimSpace(req.Program)) {
		return nil, ErrRosterMismatch
	}
	if entry.Program == "" || entry.RegistrationDate.IsZero() {
		return nil, ErrIncompleteRoster
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	semester := entry.Semester
	if semester <= 0 {
		semester = 1
	}

	student := &models.Student{
		HostelID:         HostelID(entry),
		Name:             entry.Name,
		Department:       entry.Department,
		Program:          entry.Program,
		Semester:         semester,
		PasswordHash:     string(hash),
		Role:             models.RoleStudent,
		RegistrationDate: entry.RegistrationDate.Time(),
	}

	if err := s.store.CreateStudent(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info("student registered", zap.String("hostel_id", student.HostelID))
	return student, nil
}

// Approve confirms a registration.
func (s *Service) Approve(ctx context.Context, hostelID string) error {
	if err := s.store.ApproveStudent(ctx, hostelID); err != nil {
		return err
	}
	s.logger.Info("student approved", zap.String("hostel_id", hostelID))
	return nil
}

// HostelID derives the login id: prefix, two-digit registration year,
// upper-case program and the lower-case alphanumeric name, e.g. SNG25MCAshon.
func HostelID(entry RosterEntry) string {
	year := entry.RegistrationDate.Year() % 100
	return fmt.Sprintf("%s%02d%s%s",
		hostelIDPrefix,
		year,
		strings.ToUpper(alphanumeric(entry.Program)),
		strings.ToLower(alphanumeric(entry.Name)),
	)
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
