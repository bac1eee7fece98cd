package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepository struct {
	*base.Repository
}

func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{Repository: base.NewRepository(pool)}
}

const purchaseColumns = `id, user_id, episode_id, status, receipt_ref, created_at, reviewed_at, reviewed_by`

func scanPurchase(row pgx.Row) (*model.Purchase, error) {
	var p model.Purchase
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.EpisodeID,
		&p.Status,
		&p.ReceiptRef,
		&p.CreatedAt,
		&p.ReviewedAt,
		&p.ReviewedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create создаёт заявку в статусе pending.
// ErrDuplicate, если у пользователя уже есть неотклонённая покупка этого эпизода
func (r *PurchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	query := `
		INSERT INTO purchases (user_id, episode_id, status, receipt_ref)
		VALUES ($1, $2, 'pending', $3)
		RETURNING ` + purchaseColumns

	created, err := scanPurchase(r.Pool().QueryRow(ctx, query, p.UserID, p.EpisodeID, p.ReceiptRef))
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create purchase: %w", err)
	}

	*p = *created
	return nil
}

// GetByID получает покупку по ID
func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`

	p, err := scanPurchase(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase by id: %w", err)
	}

	return p, nil
}

// ResolvePending переводит pending-покупку в конечный статус одним условным UPDATE.
// Возвращает nil, nil, если покупки нет или она уже обработана
func (r *PurchaseRepository) ResolvePending(
	ctx context.Context,
	id int64,
	status model.PurchaseStatus,
	reviewerID int64,
	at time.Time,
) (*model.Purchase, error) {
	query := `
		UPDATE purchases
		SET status = $2, reviewed_at = $3, reviewed_by = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + purchaseColumns

	p, err := scanPurchase(r.Pool().QueryRow(ctx, query, id, status, at, reviewerID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve purchase: %w", err)
	}

	return p, nil
}

// HasApproved проверяет наличие одобренной покупки эпизода
func (r *PurchaseRepository) HasApproved(ctx context.Context, userID, episodeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM purchases
			WHERE user_id = $1 AND episode_id = $2 AND status = 'approved'
		)
	`

	var exists bool
	if err := r.Pool().QueryRow(ctx, query, userID, episodeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check approved purchase: %w", err)
	}

	return exists, nil
}

// ListPending возвращает заявки на проверку, новые первыми
func (r *PurchaseRepository) ListPending(ctx context.Context) ([]*model.PendingPurchase, error) {
	query := `
		SELECT p.id, p.user_id, p.episode_id, p.status, p.receipt_ref, p.created_at,
		       p.reviewed_at, p.reviewed_by,
		       u.username, u.first_name,
		       COALESCE(e.title, ''), COALESCE(e.price, 0)
		FROM purchases p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN episodes e ON e.id = p.episode_id
		WHERE p.status = 'pending'
		ORDER BY p.created_at DESC, p.id DESC
	`

	rows, err := r.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending purchases: %w", err)
	}
	defer rows.Close()

	var result []*model.PendingPurchase
	for rows.Next() {
		var pp model.PendingPurchase
		err := rows.Scan(
			&pp.ID,
			&pp.UserID,
			&pp.EpisodeID,
			&pp.Status,
			&pp.ReceiptRef,
			&pp.CreatedAt,
			&pp.ReviewedAt,
			&pp.ReviewedBy,
			&pp.Username,
			&pp.FirstName,
			&pp.EpisodeTitle,
			&pp.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending purchase: %w", err)
		}
		result = append(result, &pp)
	}

	return result, rows.Err()
}

// ListOwned возвращает одобренные покупки пользователя с данными эпизода и курса.
// Покупки удалённых эпизодов не попадают в список
func (r *PurchaseRepository) ListOwned(ctx context.Context, userID int64) ([]*model.OwnedEpisode, error) {
	query := `
		SELECT e.id, e.title, e.number, c.id, c.title
		FROM purchases p
		JOIN episodes e ON e.id = p.episode_id
		JOIN courses c ON c.id = e.course_id
		WHERE p.user_id = $1 AND p.status = 'approved'
		ORDER BY c.id, e.number
	`

	rows, err := r.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned episodes: %w", err)
	}
	defer rows.Close()

	var owned []*model.OwnedEpisode
	for rows.Next() {
		var o model.OwnedEpisode
		if err := rows.Scan(&o.EpisodeID, &o.EpisodeTitle, &o.EpisodeNumber, &o.CourseID, &o.CourseTitle); err != nil {
			return nil, fmt.Errorf("scan owned episode: %w", err)
		}
		owned = append(owned, &o)
	}

	return owned, rows.Err()
}
