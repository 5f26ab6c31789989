// Package imports loads material records in bulk from delimited files.
package imports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ecoblock-backend/internal/application/materials"
	"ecoblock-backend/internal/domain"
	"ecoblock-backend/internal/infrastructure/database"
	"ecoblock-backend/internal/pkg/metrics"
	"ecoblock-backend/internal/pkg/validation"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidFile      = errors.New("invalid import file")
	ErrImportInProgress = errors.New("another import is in progress")
)

const (
	lockKey        = "lock:materials-import"
	defaultLockTTL = 5 * time.Minute
)

var requiredColumns = []string{
	"material", "quantity", "source", "carbon_savings",
	"project_location", "used_in_project", "date_added",
}

var reportColumns = append(append([]string{}, requiredColumns...), "actual_usage")

// RowError points at the first bad line of a file; the whole batch is rejected.
type RowError struct {
	Line   int
	Fields map[string]string
}

func (e *RowError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, c := range reportColumns {
		if msg, ok := e.Fields[c]; ok {
			parts = append(parts, c+" "+msg)
		}
	}
	return fmt.Sprintf("line %d: %s", e.Line, strings.Join(parts, "; "))
}

func (e *RowError) Is(target error) bool {
	return target == ErrInvalidFile
}

// Result summarizes one committed batch.
type Result struct {
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// Importer inserts rows that do not duplicate an existing (material, date_added) pair.
// A batch is all-or-nothing. When Locker is set, only one import runs at a time across processes.
type Importer struct {
	Store   *database.MaterialStore
	Locker  *redislock.Client
	LockTTL time.Duration
}

func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := parse(r)
	if err != nil {
		return nil, err
	}

	if im.Locker != nil {
		ttl := im.LockTTL
		if ttl <= 0 {
			ttl = defaultLockTTL
		}
		lock, err := im.Locker.Obtain(ctx, lockKey, ttl, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrImportInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("obtain import lock: %w", err)
		}
		defer func() { _ = lock.Release(context.Background()) }()
	}

	res := &Result{BatchID: uuid.New().String()}
	err = im.Store.WithTx(ctx, func(tx *database.MaterialStore) error {
		seen := make(map[[2]string]struct{}, len(rows))
		for i := range rows {
			m := rows[i]
			key := [2]string{m.Material, m.DateAdded}
			if _, dup := seen[key]; dup {
				res.Skipped++
				continue
			}
			seen[key] = struct{}{}
			exists, err := tx.ExistsByMaterialAndDate(ctx, m.Material, m.DateAdded)
			if err != nil {
				return err
			}
			if exists {
				res.Skipped++
				continue
			}
			if err := tx.Insert(ctx, &m); err != nil {
				return err
			}
			res.Inserted++
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("batch_id", res.BatchID).Msg("imports: batch rolled back")
		return nil, err
	}
	metrics.ImportedRows.WithLabelValues("inserted").Add(float64(res.Inserted))
	metrics.ImportedRows.WithLabelValues("skipped").Add(float64(res.Skipped))
	log.Info().Str("batch_id", res.BatchID).Int("inserted", res.Inserted).Int("skipped", res.Skipped).Msg("imports: batch committed")
	return res, nil
}

// parse reads and validates the whole file before anything touches the store.
func parse(r io.Reader) ([]domain.Material, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidFile, c)
		}
	}
	usageCol, hasUsage := cols["actual_usage"]

	var out []domain.Material
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		line, _ := cr.FieldPos(0)
		get := func(c string) string { return strings.TrimSpace(rec[cols[c]]) }

		in := materials.CreateMaterialInput{
			Material:        get("material"),
			Source:          get("source"),
			ProjectLocation: get("project_location"),
			UsedInProject:   get("used_in_project"),
			DateAdded:       get("date_added"),
		}
		fields := map[string]string{}
		if q, err := strconv.Atoi(get("quantity")); err == nil {
			in.Quantity = &q
		} else {
			fields["quantity"] = "must be an integer"
		}
		if cs, err := strconv.ParseFloat(get("carbon_savings"), 64); err == nil {
			in.CarbonSavings = &cs
		} else {
			fields["carbon_savings"] = "must be a number"
		}
		if hasUsage {
			if raw := strings.TrimSpace(rec[usageCol]); raw != "" {
				if u, err := strconv.Atoi(raw); err == nil {
					in.ActualUsage = &u
				} else {
					fields["actual_usage"] = "must be an integer"
				}
			}
		}
		for k, v := range validation.Struct(in) {
			if _, set := fields[k]; !set {
				fields[k] = v
			}
		}
		if len(fields) > 0 {
			return nil, &RowError{Line: line, Fields: fields}
		}
		out = append(out, domain.Material{
			Material:        in.Material,
			Quantity:        *in.Quantity,
			Source:          in.Source,
			CarbonSavings:   *in.CarbonSavings,
			ProjectLocation: in.ProjectLocation,
			UsedInProject:   in.UsedInProject,
			DateAdded:       in.DateAdded,
			ActualUsage:     in.ActualUsage,
		})
	}
	return out, nil
}
