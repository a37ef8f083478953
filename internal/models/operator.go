package models

import "golang.org/x/crypto/bcrypt"

// Operator is an account allowed to use the admin API.
type Operator struct {
	AccountID    int64  `json:"account_id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

func (o *Operator) HashPassword(password string) error {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.PasswordHash = string(bytes)
	return nil
}

func (o *Operator) CheckPassword(password string) bool {
	if o.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password))
	return err == nil
}
