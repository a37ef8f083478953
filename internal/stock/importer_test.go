package stock

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	accounts map[string]models.StockAccount
}

func (store *fakeStore) Add(_ context.Context, account models.StockAccount) (bool, error) {
	if _, ok := store.accounts[account.Phone]; ok {
		return false, nil
	}
	store.accounts[account.Phone] = account
	return true, nil
}

func writeSession(t *testing.T, path string, authKey []byte) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE sessions (dc_id integer primary key, server_address text, port integer, auth_key blob, takeout_id integer)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO sessions (dc_id, server_address, port, auth_key) VALUES (?, ?, ?, ?)`, 2, "149.154.167.51", 443, authKey)
	require.NoError(t, err)
}

func TestSession_StringSession(t *testing.T) {
	authKey := bytes.Repeat([]byte{0xAB}, authKeySize)
	session := Session{DC: 2, Address: "149.154.167.51", Port: 443, AuthKey: authKey}

	encoded, err := session.StringSession()
	require.NoError(t, err)
	require.Equal(t, "1", encoded[:1])

	raw, err := base64.URLEncoding.DecodeString(encoded[1:])
	require.NoError(t, err)
	require.Len(t, raw, 1+4+2+authKeySize)
	assert.Equal(t, byte(2), raw[0])
	assert.Equal(t, []byte{149, 154, 167, 51}, raw[1:5])
	assert.Equal(t, []byte{0x01, 0xBB}, raw[5:7])
	assert.Equal(t, authKey, raw[7:])
}

func TestSession_StringSession_BadKey(t *testing.T) {
	session := Session{DC: 2, Address: "149.154.167.51", Port: 443, AuthKey: []byte{1, 2, 3}}

	_, err := session.StringSession()

	assert.Error(t, err)
}

func TestImporter_Import(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeSession(t, filepath.Join(dir, "+33612345678.session"), bytes.Repeat([]byte{1}, authKeySize))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "+33612345678.json"), []byte(`{"app_id": 2040, "app_hash": "abc", "twoFA": "hunter2"}`), 0o600))
	writeSession(t, filepath.Join(dir, "+15550000000.session"), nil)

	store := &fakeStore{accounts: map[string]models.StockAccount{}}
	importer := NewImporter(store, dir, decimal.RequireFromString("1.5"))

	// Act
	result, err := importer.Import(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Failed: 1}, result)

	account, ok := store.accounts["+33612345678"]
	require.True(t, ok)
	assert.Equal(t, models.StockAvailable, account.Status)
	require.NotNil(t, account.Password2FA)
	assert.Equal(t, "hunter2", *account.Password2FA)
	assert.True(t, account.Cost.Equal(decimal.RequireFromString("1.5")))

	assert.FileExists(t, filepath.Join(dir, processedDir, "+33612345678.session"))
	assert.FileExists(t, filepath.Join(dir, processedDir, "+33612345678.json"))
	assert.FileExists(t, filepath.Join(dir, "+15550000000.session"))
}

func TestImporter_Import_AlreadyInStock(t *testing.T) {
	dir := t.TempDir()
	writeSession(t, filepath.Join(dir, "+33612345678.session"), bytes.Repeat([]byte{1}, authKeySize))

	store := &fakeStore{accounts: map[string]models.StockAccount{"+33612345678": {}}}
	result, err := NewImporter(store, dir, decimal.NewFromInt(1)).Import(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, result)
	assert.FileExists(t, filepath.Join(dir, processedDir, "+33612345678.session"))
}

func TestImporter_Import_EmptyDirectory(t *testing.T) {
	result, err := NewImporter(&fakeStore{}, t.TempDir(), decimal.NewFromInt(1)).Import(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
}
