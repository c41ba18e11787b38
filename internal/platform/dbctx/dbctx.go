package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Conn returns the transaction when set, else db, bound to the context.
func (c Context) Conn(db *gorm.DB) *gorm.DB {
	conn := c.Tx
	if conn == nil {
		conn = db
	}
	if c.Ctx != nil {
		conn = conn.WithContext(c.Ctx)
	}
	return conn
}

func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
