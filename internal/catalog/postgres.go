package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
)

// Postgres reads the catalog and stores preference data in a Postgres schema.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
	logger zerolog.Logger
}

// NewPostgres creates a catalog over the tables of schema.
func NewPostgres(pool *pgxpool.Pool, schema string) *Postgres {
	if schema == "" {
		schema = "public"
	}
	return &Postgres{
		pool:   pool,
		schema: schema,
		logger: log.With().Str("component", "postgres_catalog").Logger(),
	}
}

func (p *Postgres) table(name string) string {
	return pq.QuoteIdentifier(p.schema) + "." + pq.QuoteIdentifier(name)
}

func (p *Postgres) Stores(ctx context.Context) ([]recommend.Store, error) {
	query := fmt.Sprintf(`
		SELECT store_id, store_name, tel_no, post_no, jibun_addr, road_addr,
		       x_coord, y_coord, area_code, area_detail_code
		FROM %s
		ORDER BY store_id
	`, p.table("stores"))

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	stores := []recommend.Store{}
	for rows.Next() {
		var s recommend.Store
		if err := rows.Scan(
			&s.StoreID, &s.Name, &s.Phone, &s.PostNo, &s.JibunAddr, &s.RoadAddr,
			&s.X, &s.Y, &s.AreaCode, &s.AreaDetailCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stores: %w", err)
	}
	return stores, nil
}

// Prices returns the latest observed price per store for the product.
func (p *Postgres) Prices(ctx context.Context, product string) ([]recommend.PricePoint, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (pr.store_id) pr.store_id, pr.price, pr.inspect_day
		FROM %s pr
		JOIN %s g ON g.good_id = pr.good_id
		WHERE g.good_name = $1
		ORDER BY pr.store_id, pr.inspect_day DESC
	`, p.table("prices"), p.table("goods"))

	rows, err := p.pool.Query(ctx, query, product)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	prices := []recommend.PricePoint{}
	for rows.Next() {
		var pp recommend.PricePoint
		if err := rows.Scan(&pp.StoreID, &pp.Price, &pp.InspectDay); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, pp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prices: %w", err)
	}
	return prices, nil
}

func (p *Postgres) Regions(ctx context.Context) ([]recommend.Region, error) {
	query := fmt.Sprintf(`
		SELECT code, name, parent_code, level
		FROM %s
		ORDER BY level, code
	`, p.table("regions"))

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	regions := []recommend.Region{}
	for rows.Next() {
		var r recommend.Region
		if err := rows.Scan(&r.Code, &r.Name, &r.ParentCode, &r.Level); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regions: %w", err)
	}
	return regions, nil
}

// Preference implements preference.Store.
func (p *Postgres) Preference(ctx context.Context, userID string) (recommend.Preference, bool, error) {
	query := fmt.Sprintf(`SELECT w_price, w_distance FROM %s WHERE user_id = $1`, p.table("preferences"))

	var pref recommend.Preference
	err := p.pool.QueryRow(ctx, query, userID).Scan(&pref.WPrice, &pref.WDistance)
	if errors.Is(err, pgx.ErrNoRows) {
		return recommend.Preference{}, false, nil
	}
	if err != nil {
		return recommend.Preference{}, false, fmt.Errorf("failed to query preference: %w", err)
	}
	return pref, true, nil
}

func (p *Postgres) SavePreference(ctx context.Context, userID string, pref recommend.Preference) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, w_price, w_distance, selection_count, updated_at)
		VALUES ($1, $2, $3, 0, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			w_price = EXCLUDED.w_price,
			w_distance = EXCLUDED.w_distance,
			updated_at = NOW()
	`, p.table("preferences"))

	if _, err := p.pool.Exec(ctx, query, userID, pref.WPrice, pref.WDistance); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// LogSelection inserts the selection and bumps the user's counter in one transaction.
func (p *Postgres) LogSelection(ctx context.Context, sel preference.Selection) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := fmt.Sprintf(`
		INSERT INTO %s (user_id, store_id, good_name, preference_type, price, distance_km, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.table("user_selection_log"))
	if _, err := tx.Exec(ctx, insert,
		sel.UserID, sel.StoreID, sel.Product, string(sel.Type), sel.Price, sel.DistanceKm, sel.CreatedAt,
	); err != nil {
		return 0, fmt.Errorf("failed to insert selection log: %w", err)
	}

	bump := fmt.Sprintf(`
		INSERT INTO %s AS pref (user_id, w_price, w_distance, selection_count, updated_at)
		VALUES ($1, 0.5, 0.5, 1, NOW())
		ON CONFLICT (user_id) DO UPDATE SET selection_count = pref.selection_count + 1
		RETURNING selection_count
	`, p.table("preferences"))
	var count int
	if err := tx.QueryRow(ctx, bump, sel.UserID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment selection count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit selection log: %w", err)
	}
	return count, nil
}

func (p *Postgres) RecentTypes(ctx context.Context, userID string, n int) ([]preference.Type, error) {
	query := fmt.Sprintf(`
		SELECT preference_type
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, p.table("user_selection_log"))

	rows, err := p.pool.Query(ctx, query, userID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent selections: %w", err)
	}
	defer rows.Close()

	types := []preference.Type{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan selection type: %w", err)
		}
		t, err := preference.ParseType(raw)
		if err != nil {
			p.logger.Warn().Err(err).Str("user_id", userID).Msg("Skipping selection with unknown type")
			continue
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent selections: %w", err)
	}
	return types, nil
}

func (p *Postgres) Selections(ctx context.Context, userID string) ([]preference.Selection, error) {
	query := fmt.Sprintf(`
		SELECT l.user_id, l.store_id, COALESCE(s.store_name, ''), l.good_name,
		       l.price, l.distance_km, l.preference_type, l.created_at
		FROM %s l
		LEFT JOIN %s s ON s.store_id = l.store_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, l.id DESC
	`, p.table("user_selection_log"), p.table("stores"))

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	sels := []preference.Selection{}
	for rows.Next() {
		var s preference.Selection
		var typ string
		if err := rows.Scan(&s.UserID, &s.StoreID, &s.StoreName, &s.Product,
			&s.Price, &s.DistanceKm, &typ, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		s.Type = preference.Type(typ)
		sels = append(sels, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate selections: %w", err)
	}
	return sels, nil
}
