package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const orderColumns = `order_id, COALESCE(gateway_token, ''), amount, currency, subject, customer,
	status, gateway_status, payer_email, failure_reason, notified_at, created_at, updated_at`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO booking.orders
				(order_id, amount, currency, subject, customer, status, created_at, updated_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.OrderID,
		o.Amount,
		o.Currency,
		o.Subject,
		customer,
		string(o.Status),
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) AttachToken(ctx context.Context, orderID, token string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE booking.orders
			SET gateway_token = $2, status = $3, updated_at = now()
		  WHERE order_id = $1 AND status = $4 AND gateway_token IS NULL`,
		orderID, token, string(domain.OrderStatusPending), string(domain.OrderStatusCreated),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTokenAlreadyAssigned
		}
		return fmt.Errorf("attach token: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, orderID); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM booking.orders WHERE order_id = $1`, orderID)
	return scanOrder(row)
}

func (r *OrderRepository) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM booking.orders WHERE gateway_token = $1`, token)
	return scanOrder(row)
}

// Transition moves the order to t.To if it is still in a source state and
// appends the change to booking.order_history in the same transaction. The
// row lock serializes concurrent callers for the same order.
func (r *OrderRepository) Transition(ctx context.Context, orderID string, t domain.Transition) (*domain.Order, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	current, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM booking.orders WHERE order_id = $1 FOR UPDATE`, orderID,
	))
	if err != nil {
		return nil, false, err
	}
	if !current.Status.CanTransition(t.To) {
		return current, false, nil
	}

	o, err := scanOrder(tx.QueryRow(ctx,
		`UPDATE booking.orders
			SET status = $2,
				gateway_status = CASE WHEN $3::int > 0 THEN $3::int ELSE gateway_status END,
				payer_email = CASE WHEN $4::text <> '' THEN $4::text ELSE payer_email END,
				failure_reason = $5,
				updated_at = now()
		  WHERE order_id = $1
		RETURNING `+orderColumns,
		orderID, string(t.To), t.GatewayStatus, t.PayerEmail, t.FailureReason,
	))
	if err != nil {
		return nil, false, fmt.Errorf("update status: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO booking.order_history (order_id, from_status, to_status, gateway_status, reason)
			 VALUES ($1, $2, $3, $4, $5)`,
		orderID, string(current.Status), string(t.To), t.GatewayStatus, t.FailureReason,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert history: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Warn("commit transition failed", "order_id", orderID, "err", err)
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return o, true, nil
}

func (r *OrderRepository) MarkNotified(ctx context.Context, orderID string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE booking.orders
			SET notified_at = $2, updated_at = now()
		  WHERE order_id = $1 AND status = $3 AND notified_at IS NULL`,
		orderID, at, string(domain.OrderStatusConfirmed),
	)
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		customer []byte
	)
	err := row.Scan(
		&o.OrderID,
		&o.GatewayToken,
		&o.Amount,
		&o.Currency,
		&o.Subject,
		&customer,
		&o.Status,
		&o.GatewayStatus,
		&o.PayerEmail,
		&o.FailureReason,
		&o.NotifiedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	return &o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
