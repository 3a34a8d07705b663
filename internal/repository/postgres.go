package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/pagination"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const auctionColumns = `id, title, description, category, drop_id, image_url,
	retail_price, current_bid, increment, bid_count, leader, ends_at, closed_at`

const productColumns = `id, name, description, category, drop_id, image_url, price, max_credits, stock`

const dropColumns = `id, title, tagline, description, starts_at, ends_at`

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

var retryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(retryDelays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(retryDelays) {
			break
		}

		timer := time.NewTimer(retryDelays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// SeedIfEmpty заполняет пустую базу данными seed. Непустая база не изменяется.
func (r *PostgresRepository) SeedIfEmpty(ctx context.Context, seed Seed) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM auctions)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check seed: %w", err)
	}
	if exists {
		return false, nil
	}

	batch := &pgx.Batch{}
	for _, d := range seed.Drops {
		batch.Queue(`INSERT INTO drops (`+dropColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			d.ID, d.Title, d.Tagline, d.Description, d.StartsAt, d.EndsAt)
	}
	for _, a := range seed.Auctions {
		batch.Queue(`INSERT INTO auctions (`+auctionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO NOTHING`,
			a.ID, a.Title, a.Description, a.Category, a.DropID, a.ImageURL,
			a.RetailPrice.Cents(), a.CurrentBid.Cents(), a.Increment.Cents(),
			a.BidCount, a.Leader, a.EndsAt, a.ClosedAt)
	}
	for _, p := range seed.Products {
		batch.Queue(`INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Description, p.Category, p.DropID, p.ImageURL,
			p.Price.Cents(), p.MaxCredits, p.Stock)
	}
	for _, u := range seed.Users {
		batch.Queue(`INSERT INTO users (id, username, display_name, avatar_url, credits, wins, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			u.ID, u.Username, u.DisplayName, u.AvatarURL, u.Credits, u.Wins, u.JoinedAt)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, fmt.Errorf("insert seed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}

	return true, nil
}

// GetAuction возвращает аукцион по идентификатору.
func (r *PostgresRepository) GetAuction(ctx context.Context, id string) (*model.Auction, error) {
	var a model.Auction
	err := r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id)
		var err error
		a, err = scanAuction(row)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get auction: %w", err)
	}
	return &a, nil
}

// ListAuctions возвращает страницу аукционов, упорядоченных по времени окончания.
func (r *PostgresRepository) ListAuctions(ctx context.Context, filter AuctionFilter, page pagination.Page) (model.Page[model.Auction], error) {
	if err := filter.Validate(); err != nil {
		return model.Page[model.Auction]{}, err
	}
	page = page.Normalize()

	where, args := auctionWhere(filter)

	var (
		total    int
		auctions []model.Auction
	)
	err := r.withRetry(ctx, func() error {
		if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM auctions`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("count auctions: %w", err)
		}

		query := fmt.Sprintf(`SELECT %s FROM auctions%s ORDER BY ends_at, id LIMIT $%d OFFSET $%d`,
			auctionColumns, where, len(args)+1, len(args)+2)
		rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset())...)
		if err != nil {
			return fmt.Errorf("select auctions: %w", err)
		}
		auctions, err = collectAuctions(rows)
		return err
	})
	if err != nil {
		return model.Page[model.Auction]{}, err
	}

	return newPage(auctions, total, page), nil
}

// ListExpiredOpenAuctions возвращает незакрытые аукционы, чьё время вышло к моменту now.
func (r *PostgresRepository) ListExpiredOpenAuctions(ctx context.Context, now time.Time, limit int) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+auctionColumns+`
			 FROM auctions
			 WHERE closed_at IS NULL AND ends_at <= $1
			 ORDER BY ends_at, id
			 LIMIT $2`,
			now, limit,
		)
		if err != nil {
			return fmt.Errorf("select expired auctions: %w", err)
		}
		auctions, err = collectAuctions(rows)
		return err
	})
	return auctions, err
}

// CloseAuction помечает аукцион закрытым. Среди конкурирующих вызовов true получает только первый.
func (r *PostgresRepository) CloseAuction(ctx context.Context, id string, closedAt time.Time) (bool, error) {
	var closed bool
	err := r.withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE auctions SET closed_at = $2 WHERE id = $1 AND closed_at IS NULL`,
			id, closedAt,
		)
		if err != nil {
			return fmt.Errorf("close auction: %w", err)
		}
		if tag.RowsAffected() == 1 {
			closed = true
			return nil
		}

		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM auctions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check auction: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return nil
	})
	return closed, err
}

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
		var err error
		p, err = scanProduct(row)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListProducts возвращает страницу товаров, упорядоченных по названию.
func (r *PostgresRepository) ListProducts(ctx context.Context, filter ProductFilter, page pagination.Page) (model.Page[model.Product], error) {
	page = page.Normalize()

	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.DropID != "" {
		args = append(args, filter.DropID)
		conds = append(conds, fmt.Sprintf("drop_id = $%d", len(args)))
	}
	where := whereClause(conds)

	var (
		total    int
		products []model.Product
	)
	err := r.withRetry(ctx, func() error {
		if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("count products: %w", err)
		}

		query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY name, id LIMIT $%d OFFSET $%d`,
			productColumns, where, len(args)+1, len(args)+2)
		rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset())...)
		if err != nil {
			return fmt.Errorf("select products: %w", err)
		}
		defer rows.Close()

		products = products[:0]
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return fmt.Errorf("scan product: %w", err)
			}
			products = append(products, p)
		}
		return rows.Err()
	})
	if err != nil {
		return model.Page[model.Product]{}, err
	}

	return newPage(products, total, page), nil
}

// GetDrop возвращает дроп по идентификатору.
func (r *PostgresRepository) GetDrop(ctx context.Context, id string) (*model.Drop, error) {
	var d model.Drop
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx, `SELECT `+dropColumns+` FROM drops WHERE id = $1`, id).
			Scan(&d.ID, &d.Title, &d.Tagline, &d.Description, &d.StartsAt, &d.EndsAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drop: %w", err)
	}
	return &d, nil
}

// ListDrops возвращает страницу дропов, упорядоченных по времени начала.
func (r *PostgresRepository) ListDrops(ctx context.Context, page pagination.Page) (model.Page[model.Drop], error) {
	page = page.Normalize()

	var (
		total int
		drops []model.Drop
	)
	err := r.withRetry(ctx, func() error {
		if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM drops`).Scan(&total); err != nil {
			return fmt.Errorf("count drops: %w", err)
		}

		rows, err := r.pool.Query(ctx,
			`SELECT `+dropColumns+` FROM drops ORDER BY starts_at, id LIMIT $1 OFFSET $2`,
			page.Limit, page.Offset(),
		)
		if err != nil {
			return fmt.Errorf("select drops: %w", err)
		}
		defer rows.Close()

		drops = drops[:0]
		for rows.Next() {
			var d model.Drop
			if err := rows.Scan(&d.ID, &d.Title, &d.Tagline, &d.Description, &d.StartsAt, &d.EndsAt); err != nil {
				return fmt.Errorf("scan drop: %w", err)
			}
			drops = append(drops, d)
		}
		return rows.Err()
	})
	if err != nil {
		return model.Page[model.Drop]{}, err
	}

	return newPage(drops, total, page), nil
}

// GetUser возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, username, display_name, avatar_url, credits, wins, joined_at FROM users WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.Credits, &u.Wins, &u.JoinedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func auctionWhere(f AuctionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.DropID != "" {
		args = append(args, f.DropID)
		conds = append(conds, fmt.Sprintf("drop_id = $%d", len(args)))
	}

	switch f.State {
	case StateLive:
		args = append(args, f.At)
		conds = append(conds, fmt.Sprintf("closed_at IS NULL AND ends_at > $%d", len(args)))
	case StateEnded:
		args = append(args, f.At)
		conds = append(conds, fmt.Sprintf("(closed_at IS NOT NULL OR ends_at <= $%d)", len(args)))
	}

	return whereClause(conds), args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func scanAuction(row pgx.Row) (model.Auction, error) {
	var (
		a                          model.Auction
		retail, current, increment int64
	)
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Category, &a.DropID, &a.ImageURL,
		&retail, &current, &increment, &a.BidCount, &a.Leader, &a.EndsAt, &a.ClosedAt)
	if err != nil {
		return model.Auction{}, err
	}

	a.RetailPrice = money.FromCents(retail)
	a.CurrentBid = money.FromCents(current)
	a.Increment = money.FromCents(increment)
	return a, nil
}

func collectAuctions(rows pgx.Rows) ([]model.Auction, error) {
	defer rows.Close()

	var res []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction: %w", err)
		}
		res = append(res, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p     model.Product
		price int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.DropID, &p.ImageURL,
		&price, &p.MaxCredits, &p.Stock)
	if err != nil {
		return model.Product{}, err
	}

	p.Price = money.FromCents(price)
	return p, nil
}
