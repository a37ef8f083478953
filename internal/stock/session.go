package stock

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	_ "github.com/mattn/go-sqlite3"
)

const (
	stringSessionVersion = "1"
	authKeySize          = 256
)

var ErrNoAuthKey = errors.New("session has no auth key")

// Session is the login state stored in a messaging-app .session file.
type Session struct {
	DC      uint8
	Address string
	Port    uint16
	AuthKey []byte
}

// ReadSessionFile loads the first session row of a .session SQLite file.
func ReadSessionFile(path string) (*Session, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var session Session
	var dc, port int64
	row := db.QueryRow(`SELECT dc_id, server_address, port, auth_key FROM sessions LIMIT 1`)
	if err = row.Scan(&dc, &session.Address, &port, &session.AuthKey); err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	session.DC = uint8(dc)
	session.Port = uint16(port)

	if len(session.AuthKey) == 0 {
		return nil, ErrNoAuthKey
	}
	return &session, nil
}

// StringSession encodes the session the way the session client exports it:
// version byte, then base64url of dc, packed ip, big-endian port and the
// 256 byte auth key.
func (session *Session) StringSession() (string, error) {
	if len(session.AuthKey) != authKeySize {
		return "", fmt.Errorf("auth key is %d bytes, want %d", len(session.AuthKey), authKeySize)
	}

	ip := net.ParseIP(session.Address)
	if ip == nil {
		return "", fmt.Errorf("bad server address %q", session.Address)
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}

	var buf bytes.Buffer
	buf.WriteByte(session.DC)
	buf.Write(ip)
	binary.Write(&buf, binary.BigEndian, session.Port)
	buf.Write(session.AuthKey)

	return stringSessionVersion + base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}
