package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/knxpanel/internal/knx"
)

// Schema — таблица истории телеграмм.
//
// Адреса хранятся в сыром 16-битном виде, отображение строится при чтении.
const Schema = `
CREATE TABLE IF NOT EXISTS knx_telegrams (
	id                  BIGSERIAL PRIMARY KEY,
	destination_address INTEGER     NOT NULL,
	source_address      INTEGER     NOT NULL,
	apci                TEXT        NOT NULL,
	data                BYTEA,
	direction           TEXT        NOT NULL,
	received_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS knx_telegrams_received_at_idx ON knx_telegrams (received_at DESC);
`

const insertTelegramSQL = `
	INSERT INTO knx_telegrams (destination_address, source_address, apci, data, direction, received_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// TelegramRepo — репозиторий истории телеграмм.
type TelegramRepo struct {
	pool *pgxpool.Pool
}

// NewTelegramRepo создаёт новый TelegramRepo.
func NewTelegramRepo(pool *pgxpool.Pool) *TelegramRepo {
	return &TelegramRepo{pool: pool}
}

// EnsureSchema создаёт таблицу и индекс, если их нет.
func (r *TelegramRepo) EnsureSchema(ctx context.Context) error {
	// Exec без аргументов идёт через simple protocol и допускает несколько выражений
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Insert сохраняет одну телеграмму.
func (r *TelegramRepo) Insert(ctx context.Context, t knx.Telegram) error {
	_, err := r.pool.Exec(ctx, insertTelegramSQL, insertArgs(t)...)
	if err != nil {
		return fmt.Errorf("insert telegram: %w", err)
	}
	return nil
}

// InsertBatch сохраняет телеграммы одним batch-запросом.
func (r *TelegramRepo) InsertBatch(ctx context.Context, telegrams []knx.Telegram) error {
	switch len(telegrams) {
	case 0:
		return nil
	case 1:
		return r.Insert(ctx, telegrams[0])
	}

	batch := &pgx.Batch{}
	for _, t := range telegrams {
		batch.Queue(insertTelegramSQL, insertArgs(t)...)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range telegrams {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert telegram batch: %w", err)
		}
	}
	return nil
}

// Recent возвращает последние limit телеграмм, от новых к старым.
func (r *TelegramRepo) Recent(ctx context.Context, limit int) ([]knx.Telegram, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	query := `
		SELECT destination_address, source_address, apci, data, direction, received_at
		FROM knx_telegrams
		ORDER BY received_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list telegrams: %w", err)
	}
	defer rows.Close()

	var telegrams []knx.Telegram
	for rows.Next() {
		t, err := scanTelegram(rows)
		if err != nil {
			return nil, err
		}
		telegrams = append(telegrams, t)
	}
	return telegrams, rows.Err()
}

// DeleteOlderThan удаляет телеграммы старше cutoff. Возвращает количество удалённых строк.
func (r *TelegramRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM knx_telegrams WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete telegrams: %w", err)
	}
	return result.RowsAffected(), nil
}

func insertArgs(t knx.Telegram) []any {
	return []any{
		int32(t.DestinationAddress),
		int32(t.SourceAddress),
		string(t.Payload.APCI),
		t.Payload.Data,
		string(t.Direction),
		t.Timestamp,
	}
}

func scanTelegram(row pgx.Row) (knx.Telegram, error) {
	var (
		dst, src  int32
		apci, dir string
		data      []byte
		at        time.Time
	)
	if err := row.Scan(&dst, &src, &apci, &data, &dir, &at); err != nil {
		return knx.Telegram{}, fmt.Errorf("scan telegram: %w", err)
	}

	return knx.Telegram{
		DestinationAddress: knx.GroupAddress(uint16(dst)),
		SourceAddress:      knx.IndividualAddress(uint16(src)),
		Payload:            knx.Payload{APCI: knx.APCI(apci), Data: data},
		Direction:          knx.Direction(dir),
		Timestamp:          at,
	}, nil
}
