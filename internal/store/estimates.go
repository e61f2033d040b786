package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/fleetplan/fleetplan/pkg/costplan"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// EstimateSnapshot is a persisted copy of one computed estimate. Snapshots
// exist so the UI can link back to past results; the engine recomputes from
// live pricing on every call and never reads these back as inputs.
type EstimateSnapshot struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"createdAt"`
	Region    string                 `json:"region"`
	Params    json.RawMessage        `json:"params"`
	Breakdown costplan.CostBreakdown `json:"breakdown"`
}

// EstimateStore persists estimate snapshots to SQLite.
type EstimateStore struct {
	db *sql.DB
}

// NewEstimateStore creates an EstimateStore. db may be nil, in which case
// Save is a no-op returning a fresh id and reads return ErrNotFound.
func NewEstimateStore(db *sql.DB) *EstimateStore {
	return &EstimateStore{db: db}
}

// Save persists a snapshot and returns its id. The parameters are stored as
// the caller-supplied JSON so the wizard can re-populate its form fields.
func (s *EstimateStore) Save(region string, params any, bd costplan.CostBreakdown) (string, error) {
	id := ksuid.New().String()
	if s.db == nil {
		return id, nil
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshaling params: %w", err)
	}
	bdJSON, err := json.Marshal(bd)
	if err != nil {
		return "", fmt.Errorf("marshaling breakdown: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO estimates (id, created_at, region, params_json, breakdown_json, monthly_operational_usd)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().Format(time.RFC3339), region, string(paramsJSON), string(bdJSON),
		bd.Total.MonthlyOperationalUSD,
	)
	if err != nil {
		return "", fmt.Errorf("inserting estimate: %w", err)
	}
	return id, nil
}

// Get returns one snapshot by id, or ErrNotFound.
func (s *EstimateStore) Get(id string) (*EstimateSnapshot, error) {
	if s.db == nil {
		return nil, ErrNotFound
	}

	row := s.db.QueryRow(
		`SELECT id, created_at, region, params_json, breakdown_json FROM estimates WHERE id = ?`, id,
	)
	snap, err := scanEstimate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return snap, err
}

// List returns up to limit snapshots, newest first.
func (s *EstimateStore) List(limit int) ([]EstimateSnapshot, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, created_at, region, params_json, breakdown_json FROM estimates
		 ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}
	defer rows.Close()

	var result []EstimateSnapshot
	for rows.Next() {
		snap, err := scanEstimate(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *snap)
	}
	return result, rows.Err()
}

func scanEstimate(scan func(...any) error) (*EstimateSnapshot, error) {
	var snap EstimateSnapshot
	var createdAt, paramsJSON, bdJSON string
	if err := scan(&snap.ID, &createdAt, &snap.Region, &paramsJSON, &bdJSON); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	snap.CreatedAt = ts
	snap.Params = json.RawMessage(paramsJSON)
	if err := json.Unmarshal([]byte(bdJSON), &snap.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshaling breakdown: %w", err)
	}
	return &snap, nil
}
