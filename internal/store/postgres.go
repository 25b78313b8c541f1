package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/errors"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// PostgresConfig holds connection settings for the Postgres store.
type PostgresConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStore implements BondStore, CurveStore, SpreadStore and
// MetricsStore on a PostgreSQL database.
type PostgresStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgresStore opens a connection pool against the configured database.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &PostgresStore{
		db:  db,
		log: logger.GetLogger("store.postgres"),
	}, nil
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates the tables if they do not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS bonds (
			bond_id          BIGSERIAL PRIMARY KEY,
			isin             TEXT NOT NULL,
			issuer           TEXT NOT NULL,
			issue_date       DATE NOT NULL,
			maturity_date    DATE NOT NULL,
			coupon_rate      NUMERIC(9,6) NOT NULL,
			coupon_frequency INT NOT NULL,
			face_value       NUMERIC(14,2) NOT NULL,
			credit_rating    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS yield_curve (
			curve_date  DATE NOT NULL,
			tenor_years INT NOT NULL,
			yield       NUMERIC(9,6) NOT NULL,
			PRIMARY KEY (curve_date, tenor_years)
		)`,
		`CREATE TABLE IF NOT EXISTS credit_spread (
			rating     TEXT PRIMARY KEY,
			spread_bps NUMERIC(9,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bond_risk_metrics (
			bond_id           BIGINT NOT NULL,
			as_of             DATE NOT NULL,
			price             NUMERIC(14,2) NOT NULL,
			macaulay_duration NUMERIC(12,4) NOT NULL,
			modified_duration NUMERIC(12,4) NOT NULL,
			convexity         NUMERIC(12,4) NOT NULL,
			PRIMARY KEY (bond_id, as_of)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create schema")
		}
	}

	return nil
}

// GetBond retrieves a bond by ID.
func (s *PostgresStore) GetBond(ctx context.Context, bondID int64) (*models.BondTerms, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT bond_id, isin, issuer, issue_date, maturity_date,
		       coupon_rate, coupon_frequency, face_value, credit_rating
		FROM bonds
		WHERE bond_id = $1`, bondID)

	var b models.BondTerms
	err := row.Scan(&b.BondID, &b.ISIN, &b.Issuer, &b.IssueDate, &b.MaturityDate,
		&b.CouponRate, &b.CouponFrequency, &b.FaceValue, &b.CreditRating)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("no bond found with id %d", bondID))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch bond %d", bondID)
	}

	return &b, nil
}

// ListBonds returns all bonds ordered by ID.
func (s *PostgresStore) ListBonds(ctx context.Context) ([]models.BondTerms, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bond_id, isin, issuer, issue_date, maturity_date,
		       coupon_rate, coupon_frequency, face_value, credit_rating
		FROM bonds
		ORDER BY bond_id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bonds")
	}
	defer rows.Close()

	var bonds []models.BondTerms
	for rows.Next() {
		var b models.BondTerms
		if err := rows.Scan(&b.BondID, &b.ISIN, &b.Issuer, &b.IssueDate, &b.MaturityDate,
			&b.CouponRate, &b.CouponFrequency, &b.FaceValue, &b.CreditRating); err != nil {
			return nil, errors.Wrap(err, "failed to scan bond row")
		}
		bonds = append(bonds, b)
	}

	return bonds, rows.Err()
}

// ListBondIDs returns all bond identifiers ordered ascending.
func (s *PostgresStore) ListBondIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bond_id FROM bonds ORDER BY bond_id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bond ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan bond id")
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// SaveBonds bulk-inserts bonds inside a single transaction.
func (s *PostgresStore) SaveBonds(ctx context.Context, bonds []models.BondTerms) error {
	if len(bonds) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bonds (isin, issuer, issue_date, maturity_date,
		                   coupon_rate, coupon_frequency, face_value, credit_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare bond insert")
	}
	defer stmt.Close()

	for _, b := range bonds {
		if _, err := stmt.ExecContext(ctx, b.ISIN, b.Issuer, b.IssueDate, b.MaturityDate,
			b.CouponRate, b.CouponFrequency, b.FaceValue, b.CreditRating); err != nil {
			return errors.Wrapf(err, "failed to insert bond %s", b.ISIN)
		}
	}

	return tx.Commit()
}

// LatestCurve returns the most recent term structure dated on or before asOf.
func (s *PostgresStore) LatestCurve(ctx context.Context, asOf time.Time) (*models.TermStructure, error) {
	var curveDate time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT curve_date
		FROM yield_curve
		WHERE curve_date <= $1
		ORDER BY curve_date DESC
		LIMIT 1`, asOf).Scan(&curveDate)
	if err == sql.ErrNoRows {
		return nil, errors.Unavailable(fmt.Sprintf("no yield curve available on or before %s", asOf.Format("2006-01-02")))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve curve date")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenor_years, yield
		FROM yield_curve
		WHERE curve_date = $1
		ORDER BY tenor_years`, curveDate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch yield curve")
	}
	defer rows.Close()

	curve := models.TermStructure{CurveDate: curveDate}
	for rows.Next() {
		var p models.CurvePoint
		if err := rows.Scan(&p.TenorYears, &p.Yield); err != nil {
			return nil, errors.Wrap(err, "failed to scan curve point")
		}
		curve.Points = append(curve.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read yield curve")
	}
	if len(curve.Points) == 0 {
		return nil, errors.Unavailable(fmt.Sprintf("yield curve for %s has no points", curveDate.Format("2006-01-02")))
	}

	return &curve, nil
}

// SaveCurve upserts every point of the snapshot.
func (s *PostgresStore) SaveCurve(ctx context.Context, curve models.TermStructure) error {
	if len(curve.Points) == 0 {
		return errors.InvalidArgument("cannot save empty term structure")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO yield_curve (curve_date, tenor_years, yield)
		VALUES ($1, $2, $3)
		ON CONFLICT (curve_date, tenor_years)
		DO UPDATE SET yield = EXCLUDED.yield`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare curve insert")
	}
	defer stmt.Close()

	for _, p := range curve.Points {
		if _, err := stmt.ExecContext(ctx, curve.CurveDate, p.TenorYears, p.Yield); err != nil {
			return errors.Wrapf(err, "failed to insert curve point %d", p.TenorYears)
		}
	}

	return tx.Commit()
}

// GetSpreads returns the full rating-to-spread table, converting stored basis
// points to decimals.
func (s *PostgresStore) GetSpreads(ctx context.Context) (models.CreditSpreads, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rating, spread_bps FROM credit_spread`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch credit spreads")
	}
	defer rows.Close()

	spreads := models.CreditSpreads{}
	for rows.Next() {
		var rating string
		var bps float64
		if err := rows.Scan(&rating, &bps); err != nil {
			return nil, errors.Wrap(err, "failed to scan credit spread")
		}
		spreads[rating] = bps / 10000.0
	}

	return spreads, rows.Err()
}

// SaveSpreads upserts the rating-to-spread table, storing basis points.
func (s *PostgresStore) SaveSpreads(ctx context.Context, spreads models.CreditSpreads) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for rating, spread := range spreads {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO credit_spread (rating, spread_bps)
			VALUES ($1, $2)
			ON CONFLICT (rating)
			DO UPDATE SET spread_bps = EXCLUDED.spread_bps`, rating, spread*10000.0); err != nil {
			return errors.Wrapf(err, "failed to upsert spread for rating %s", rating)
		}
	}

	return tx.Commit()
}

// UpsertMetrics inserts or updates the metrics record keyed by (bond_id, as_of).
func (s *PostgresStore) UpsertMetrics(ctx context.Context, record models.MetricsRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bond_risk_metrics
			(bond_id, as_of, price, macaulay_duration, modified_duration, convexity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bond_id, as_of)
		DO UPDATE SET
			price = EXCLUDED.price,
			macaulay_duration = EXCLUDED.macaulay_duration,
			modified_duration = EXCLUDED.modified_duration,
			convexity = EXCLUDED.convexity`,
		record.BondID, record.AsOf, record.Price,
		record.MacaulayDuration, record.ModifiedDuration, record.Convexity)
	if err != nil {
		return errors.Wrapf(err, "failed to upsert metrics for bond %d", record.BondID)
	}

	return nil
}

// ListMetrics returns all metrics records for the given as-of date.
func (s *PostgresStore) ListMetrics(ctx context.Context, asOf time.Time) ([]models.MetricsRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bond_id, as_of, price, macaulay_duration, modified_duration, convexity
		FROM bond_risk_metrics
		WHERE as_of = $1
		ORDER BY bond_id`, asOf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch metrics")
	}
	defer rows.Close()

	var records []models.MetricsRecord
	for rows.Next() {
		var r models.MetricsRecord
		if err := rows.Scan(&r.BondID, &r.AsOf, &r.Price,
			&r.MacaulayDuration, &r.ModifiedDuration, &r.Convexity); err != nil {
			return nil, errors.Wrap(err, "failed to scan metrics row")
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
