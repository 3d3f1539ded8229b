package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ActionsTableSchema = `
	CREATE TABLE IF NOT EXISTS actions (
		id VARCHAR NOT NULL,
		tenant_id VARCHAR NOT NULL,
		subscription_id VARCHAR NOT NULL,
		resource_id VARCHAR NOT NULL,
		resource_name VARCHAR,
		resource_type VARCHAR,
		kind VARCHAR NOT NULL,
		upgrade_type VARCHAR,
		risk VARCHAR,
		status VARCHAR NOT NULL,
		analysis VARCHAR,
		recommendation VARCHAR,
		estimated_savings VARCHAR,
		approved_by VARCHAR,
		approved_at TIMESTAMP NULL,
		detail VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tenant_id, id)
	);
`

var bootQueries = []string{
	ActionsTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
