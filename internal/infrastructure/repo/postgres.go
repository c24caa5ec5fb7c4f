package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"shop-backend/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	return &PostgresRepo{db: db}, nil
}

func (r *PostgresRepo) RunMigrations(migrationsDir string) error {
	driver, err := migratepg.WithInstance(r.db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

func (r *PostgresRepo) Put(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO orders
		(order_id,customer_name,phone,email,street,building,floor,apartment,city,fulfillment,items,amount_cents,currency,status,processor_order_id,payment_token,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (order_id) DO UPDATE SET
		customer_name=$2,phone=$3,email=$4,street=$5,building=$6,floor=$7,apartment=$8,city=$9,fulfillment=$10,items=$11,amount_cents=$12,currency=$13,status=$14,processor_order_id=$15,payment_token=$16,updated_at=$18`,
		o.OrderID, o.CustomerName, o.Phone, o.Email, o.Street, o.Building, o.Floor, o.Apartment, o.City,
		o.Fulfillment, string(items), o.AmountCents, o.Currency, string(o.Status), o.ProcessorOrderID,
		o.PaymentToken, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	return r.getWhere(ctx, `order_id=$1`, id)
}

func (r *PostgresRepo) GetByProcessorRef(ctx context.Context, ref int64) (*domain.Order, error) {
	return r.getWhere(ctx, `processor_order_id=$1`, ref)
}

func (r *PostgresRepo) getWhere(ctx context.Context, cond string, arg any) (*domain.Order, error) {
	var o domain.Order
	var items string
	err := r.db.QueryRowContext(ctx, `SELECT order_id,customer_name,phone,email,street,building,floor,apartment,city,fulfillment,items,amount_cents,currency,status,processor_order_id,payment_token,created_at,updated_at
		FROM orders WHERE `+cond, arg).
		Scan(&o.OrderID, &o.CustomerName, &o.Phone, &o.Email, &o.Street, &o.Building, &o.Floor, &o.Apartment, &o.City,
			&o.Fulfillment, &items, &o.AmountCents, &o.Currency, (*string)(&o.Status), &o.ProcessorOrderID,
			&o.PaymentToken, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

// AttachProcessorRef records the processor order reference and payment token
// against the merchant order so later webhook events can be matched back.
func (r *PostgresRepo) AttachProcessorRef(ctx context.Context, id string, ref int64, paymentToken string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET processor_order_id=$2, payment_token=$3, updated_at=NOW() WHERE order_id=$1`,
		id, ref, paymentToken)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$2, updated_at=NOW() WHERE order_id=$1`,
		id, string(status))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
