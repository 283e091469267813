package database

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate"
	migratedb "github.com/golang-migrate/migrate/database"
	"github.com/golang-migrate/migrate/database/mysql"
	"github.com/golang-migrate/migrate/database/postgres"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/config"
	"github.com/sisu-network/sentinel/types"
	"github.com/sisu-network/sentinel/utils"
)

type Database interface {
	Init() error
	Close() error

	// Chain checkpoints
	EnsureChain(chain, initialState string) error
	LoadChainState(chain string) (*types.ChainState, error)
	// CommitSync stores the new checkpoint of a chain together with the transfers found up to that
	// checkpoint in one db transaction. Transfers that were already recorded are skipped. It returns
	// the transfers that were actually inserted.
	CommitSync(chain, newState string, transfers []*types.Transfer) ([]*types.Transfer, error)

	// Transfers
	LoadTransfer(fromTxHash, fromTxIndex string) (*types.Transfer, error)
	LoadPendingTransfers(includeSentried bool) ([]*types.Transfer, error)
	UpdateTransfer(transfer *types.Transfer) error
	// ClaimTransfer saves transfer like UpdateTransfer unless another transfer already owns its
	// ToTxHash. It returns false and leaves the row untouched in that case.
	ClaimTransfer(transfer *types.Transfer) (bool, error)
	IsClaimed(toTxHash string, exceptId int64) (bool, error)
	CountPending() (int64, error)
}

const transferColumns = "id, asset, from_chain, to_chain, from_tx_hash, from_tx_index, nonce, amount, " +
	"to_recipient, to_payload, to_tx_hash, signing_hash, done, sentried, ignored, burn_time, " +
	"created_at, updated_at"

var transferInsertColumns = []string{"asset", "from_chain", "to_chain", "from_tx_hash", "from_tx_index",
	"nonce", "amount", "to_recipient", "to_payload", "to_tx_hash", "signing_hash", "done", "sentried",
	"ignored", "burn_time", "created_at", "updated_at"}

type DefaultDatabase struct {
	cfg     *config.Sentinel
	db      *sql.DB
	dialect dialect
}

type dbLogger struct {
}

func (loggger *dbLogger) Printf(format string, v ...interface{}) {
	log.Verbosef(strings.TrimSuffix(format, "\n"), v...)
}

func (loggger *dbLogger) Verbose() bool {
	return true
}

func NewDb(cfg *config.Sentinel) Database {
	driver := cfg.DbDriver
	if cfg.InMemory {
		driver = config.DbDriverSqlite
	}

	return &DefaultDatabase{
		cfg:     cfg,
		dialect: dialect{driver: driver},
	}
}

func (d *DefaultDatabase) Connect() error {
	var err error
	switch d.dialect.driver {
	case config.DbDriverSqlite:
		d.db, err = d.connectSqlite()
	case config.DbDriverPostgres:
		d.db, err = d.connectPostgres()
	case config.DbDriverMysql:
		d.db, err = d.connectMysql()
	default:
		err = fmt.Errorf("unknown db driver %s", d.dialect.driver)
	}

	if err != nil {
		return err
	}

	log.Info("Db is connected successfully, driver = ", d.dialect.driver)
	return nil
}

func (d *DefaultDatabase) connectMysql() (*sql.DB, error) {
	host := d.cfg.DbHost
	if host == "" {
		return nil, fmt.Errorf("DB host cannot be empty")
	}

	username := d.cfg.DbUsername
	password := d.cfg.DbPassword
	schema := d.cfg.DbSchema

	url := fmt.Sprintf("%s:%s@tcp(%s:%d)/", username, password, host, d.cfg.DbPort)
	database, err := sql.Open("mysql", url)
	if err != nil {
		return nil, err
	}
	_, err = database.Exec("CREATE DATABASE IF NOT EXISTS " + schema)
	database.Close()
	if err != nil {
		return nil, err
	}

	return sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?multiStatements=true", username, password,
		host, d.cfg.DbPort, schema))
}

func (d *DefaultDatabase) connectPostgres() (*sql.DB, error) {
	if d.cfg.DbHost == "" {
		return nil, fmt.Errorf("DB host cannot be empty")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.cfg.DbHost, d.cfg.DbPort, d.cfg.DbUsername, d.cfg.DbPassword, d.cfg.DbSchema)
	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	return database, database.Ping()
}

func (d *DefaultDatabase) connectSqlite() (*sql.DB, error) {
	dsn := ":memory:"
	if !d.cfg.InMemory {
		dsn = d.cfg.DbSchema + ".db"
	}

	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// Every new connection to :memory: is a new empty database.
	database.SetMaxOpenConns(1)

	return database, nil
}

func (d *DefaultDatabase) DoMigration() error {
	dir, err := MigrationsTempDir(d.dialect.driver)
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	var driver migratedb.Driver
	switch d.dialect.driver {
	case config.DbDriverMysql:
		driver, err = mysql.WithInstance(d.db, &mysql.Config{})
	case config.DbDriverPostgres:
		driver, err = postgres.WithInstance(d.db, &postgres.Config{})
	default:
		driver, err = sqlite3.WithInstance(d.db, &sqlite3.Config{})
	}
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, d.dialect.driver, driver)
	if err != nil {
		return err
	}

	m.Log = &dbLogger{}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (d *DefaultDatabase) Init() error {
	err := d.Connect()
	if err != nil {
		log.Error("Failed to connect to DB. Err =", err)
		return err
	}

	return d.DoMigration()
}

func (d *DefaultDatabase) Close() error {
	if d.db == nil {
		return nil
	}

	return d.db.Close()
}

func (d *DefaultDatabase) EnsureChain(chain, initialState string) error {
	now := time.Now().UnixMilli()
	_, err := d.db.Exec(d.dialect.insertIgnore("chains", []string{"chain", "synced_state", "created_at", "updated_at"}),
		chain, initialState, now, now)

	return err
}

func (d *DefaultDatabase) LoadChainState(chain string) (*types.ChainState, error) {
	row := d.db.QueryRow(d.dialect.rebind("SELECT chain, synced_state, created_at, updated_at FROM chains WHERE chain = ?"), chain)

	var createdAt, updatedAt int64
	state := &types.ChainState{}
	err := row.Scan(&state.Chain, &state.SyncedState, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state.CreatedAt = time.UnixMilli(createdAt)
	state.UpdatedAt = time.UnixMilli(updatedAt)

	return state, nil
}

func (d *DefaultDatabase) CommitSync(chain, newState string, transfers []*types.Transfer) ([]*types.Transfer, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, err
	}

	inserted, err := d.commitSync(tx, chain, newState, transfers)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to rollback sync commit, err = ", rbErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return inserted, nil
}

func (d *DefaultDatabase) commitSync(tx *sql.Tx, chain, newState string, transfers []*types.Transfer) ([]*types.Transfer, error) {
	now := time.Now()
	_, err := tx.Exec(d.dialect.insertIgnore("chains", []string{"chain", "synced_state", "created_at", "updated_at"}),
		chain, newState, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(d.dialect.rebind("UPDATE chains SET synced_state = ?, updated_at = ? WHERE chain = ?"),
		newState, now.UnixMilli(), chain)
	if err != nil {
		return nil, err
	}

	insertQuery := d.dialect.insertIgnore("transfers", transferInsertColumns)
	selectQuery := d.dialect.rebind("SELECT id FROM transfers WHERE from_tx_hash = ? AND from_tx_index = ?")

	inserted := make([]*types.Transfer, 0, len(transfers))
	for _, transfer := range transfers {
		if transfer.CreatedAt.IsZero() {
			transfer.CreatedAt = now
		}
		transfer.UpdatedAt = now

		res, err := tx.Exec(insertQuery, insertArgs(transfer)...)
		if err != nil {
			return nil, fmt.Errorf("cannot insert transfer %s: %w", transfer.Key(), err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			log.Verbosef("Transfer %s on %s is already recorded", transfer.Key(), chain)
			continue
		}

		if err := tx.QueryRow(selectQuery, transfer.FromTxHash, transfer.FromTxIndex).Scan(&transfer.Id); err != nil {
			return nil, err
		}

		inserted = append(inserted, transfer)
	}

	return inserted, nil
}

func (d *DefaultDatabase) LoadTransfer(fromTxHash, fromTxIndex string) (*types.Transfer, error) {
	query := d.dialect.rebind("SELECT " + transferColumns + " FROM transfers WHERE from_tx_hash = ? AND from_tx_index = ?")
	rows, err := d.db.Query(query, fromTxHash, fromTxIndex)
	if err != nil {
		return nil, err
	}

	transfers, err := scanTransfers(rows)
	if err != nil || len(transfers) == 0 {
		return nil, err
	}

	return transfers[0], nil
}

func (d *DefaultDatabase) LoadPendingTransfers(includeSentried bool) ([]*types.Transfer, error) {
	query := "SELECT " + transferColumns + " FROM transfers WHERE done = ? AND ignored = ?"
	args := []interface{}{false, false}
	if !includeSentried {
		query += " AND sentried = ?"
		args = append(args, false)
	}
	query += " ORDER BY id"

	rows, err := d.db.Query(d.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return scanTransfers(rows)
}

func (d *DefaultDatabase) UpdateTransfer(transfer *types.Transfer) error {
	transfer.UpdatedAt = time.Now()

	query := d.dialect.rebind("UPDATE transfers SET to_chain = ?, to_recipient = ?, to_tx_hash = ?, signing_hash = ?, " +
		"done = ?, sentried = ?, ignored = ?, updated_at = ? WHERE from_tx_hash = ? AND from_tx_index = ?")
	res, err := d.db.Exec(query,
		nullString(transfer.ToChain),
		utils.ToURLBase64(transfer.ToRecipient),
		nullString(transfer.ToTxHash),
		nullString(transfer.SigningHash),
		transfer.Done,
		transfer.Sentried,
		transfer.Ignored,
		transfer.UpdatedAt.UnixMilli(),
		transfer.FromTxHash,
		transfer.FromTxIndex,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transfer %s not found", transfer.Key())
	}

	return nil
}

func (d *DefaultDatabase) ClaimTransfer(transfer *types.Transfer) (bool, error) {
	if transfer.ToTxHash == "" {
		return true, d.UpdateTransfer(transfer)
	}

	transfer.UpdatedAt = time.Now()

	// The derived table lets mysql read the table it updates.
	query := d.dialect.rebind("UPDATE transfers SET to_chain = ?, to_recipient = ?, to_tx_hash = ?, signing_hash = ?, " +
		"done = ?, sentried = ?, ignored = ?, updated_at = ? WHERE from_tx_hash = ? AND from_tx_index = ? " +
		"AND NOT EXISTS (SELECT 1 FROM (SELECT id FROM transfers WHERE to_tx_hash = ? AND " +
		"NOT (from_tx_hash = ? AND from_tx_index = ?)) AS claimed)")
	res, err := d.db.Exec(query,
		nullString(transfer.ToChain),
		utils.ToURLBase64(transfer.ToRecipient),
		nullString(transfer.ToTxHash),
		nullString(transfer.SigningHash),
		transfer.Done,
		transfer.Sentried,
		transfer.Ignored,
		transfer.UpdatedAt.UnixMilli(),
		transfer.FromTxHash,
		transfer.FromTxIndex,
		transfer.ToTxHash,
		transfer.FromTxHash,
		transfer.FromTxIndex,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	existing, err := d.LoadTransfer(transfer.FromTxHash, transfer.FromTxIndex)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, fmt.Errorf("transfer %s not found", transfer.Key())
	}

	return false, nil
}

func (d *DefaultDatabase) IsClaimed(toTxHash string, exceptId int64) (bool, error) {
	var count int64
	err := d.db.QueryRow(d.dialect.rebind("SELECT COUNT(*) FROM transfers WHERE to_tx_hash = ? AND id <> ?"),
		toTxHash, exceptId).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (d *DefaultDatabase) CountPending() (int64, error) {
	var count int64
	err := d.db.QueryRow(d.dialect.rebind("SELECT COUNT(*) FROM transfers WHERE done = ? AND ignored = ?"),
		false, false).Scan(&count)

	return count, err
}

func insertArgs(t *types.Transfer) []interface{} {
	var payload sql.NullString
	if t.ToPayload != nil {
		payload = sql.NullString{String: utils.ToURLBase64(t.ToPayload), Valid: true}
	}

	amount := "0"
	if t.Amount != nil {
		amount = t.Amount.String()
	}

	var burnTime int64
	if !t.BurnTime.IsZero() {
		burnTime = t.BurnTime.UnixMilli()
	}

	return []interface{}{
		t.Asset,
		t.FromChain,
		nullString(t.ToChain),
		t.FromTxHash,
		t.FromTxIndex,
		utils.ToURLBase64(t.Nonce),
		amount,
		utils.ToURLBase64(t.ToRecipient),
		payload,
		nullString(t.ToTxHash),
		nullString(t.SigningHash),
		t.Done,
		t.Sentried,
		t.Ignored,
		burnTime,
		t.CreatedAt.UnixMilli(),
		t.UpdatedAt.UnixMilli(),
	}
}

func scanTransfers(rows *sql.Rows) ([]*types.Transfer, error) {
	defer rows.Close()

	ret := make([]*types.Transfer, 0)
	for rows.Next() {
		var (
			t                                       types.Transfer
			toChain, payload, toTxHash, signingHash sql.NullString
			nonce, amount, recipient                string
			burnTime, createdAt, updatedAt          int64
		)

		err := rows.Scan(&t.Id, &t.Asset, &t.FromChain, &toChain, &t.FromTxHash, &t.FromTxIndex, &nonce,
			&amount, &recipient, &payload, &toTxHash, &signingHash, &t.Done, &t.Sentried, &t.Ignored,
			&burnTime, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		t.ToChain = toChain.String
		t.ToTxHash = toTxHash.String
		t.SigningHash = signingHash.String

		if t.Nonce, err = utils.FromBase64(nonce); err != nil {
			return nil, fmt.Errorf("corrupted nonce of transfer %d: %w", t.Id, err)
		}
		if t.ToRecipient, err = utils.FromBase64(recipient); err != nil {
			return nil, fmt.Errorf("corrupted recipient of transfer %d: %w", t.Id, err)
		}
		if payload.Valid {
			if t.ToPayload, err = utils.FromBase64(payload.String); err != nil {
				return nil, fmt.Errorf("corrupted payload of transfer %d: %w", t.Id, err)
			}
		}

		var ok bool
		if t.Amount, ok = new(big.Int).SetString(amount, 10); !ok {
			return nil, fmt.Errorf("corrupted amount of transfer %d: %s", t.Id, amount)
		}

		if burnTime > 0 {
			t.BurnTime = time.UnixMilli(burnTime)
		}
		t.CreatedAt = time.UnixMilli(createdAt)
		t.UpdatedAt = time.UnixMilli(updatedAt)

		ret = append(ret, &t)
	}

	return ret, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
