package schedule

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	tableSchedules    = "coach_availability"
	tableIntegrations = "calendar_integrations"
)

type columnTypes struct {
	id, json, timestamp, boolean string
}

func typesFor(d string) columnTypes {
	if d == dialect.Postgres {
		return columnTypes{id: "uuid", json: "jsonb", timestamp: "timestamptz", boolean: "boolean"}
	}
	// sqlite keys off the declared type to decode timestamps and booleans.
	return columnTypes{id: "text", json: "text", timestamp: "datetime", boolean: "boolean"}
}

// Migrate creates the availability tables if they are missing.
func Migrate(ctx context.Context, drv *entsql.Driver) error {
	b := entsql.Dialect(drv.Dialect())
	ct := typesFor(drv.Dialect())

	stmts := []entsql.Querier{
		b.CreateTable(tableSchedules).IfNotExists().
			Columns(
				entsql.Column("id").Type(ct.id).Attr("NOT NULL"),
				entsql.Column("coach_id").Type(ct.id).Attr("NOT NULL"),
				entsql.Column("name").Type("varchar(255)").Attr("NOT NULL DEFAULT ''"),
				entsql.Column("time_zone").Type("varchar(64)").Attr("NOT NULL"),
				entsql.Column("slot_duration_minutes").Type("integer").Attr("NOT NULL"),
				entsql.Column("rules").Type(ct.json).Attr("NOT NULL"),
				entsql.Column("is_default").Type(ct.boolean).Attr("NOT NULL DEFAULT false"),
				entsql.Column("created_at").Type(ct.timestamp).Attr("NOT NULL"),
			).
			PrimaryKey("id"),
		b.CreateIndex("coach_availability_coach_default").IfNotExists().
			Table(tableSchedules).
			Columns("coach_id", "is_default"),
		b.CreateTable(tableIntegrations).IfNotExists().
			Columns(
				entsql.Column("id").Type(ct.id).Attr("NOT NULL"),
				entsql.Column("coach_id").Type(ct.id).Attr("NOT NULL"),
				entsql.Column("provider").Type("varchar(32)").Attr("NOT NULL"),
				entsql.Column("calendar_id").Type("varchar(255)").Attr("NOT NULL"),
				entsql.Column("time_zone").Type("varchar(64)").Attr("NOT NULL DEFAULT ''"),
				entsql.Column("access_token").Type("text").Attr("NOT NULL DEFAULT ''"),
				entsql.Column("created_at").Type(ct.timestamp).Attr("NOT NULL"),
			).
			PrimaryKey("id"),
		b.CreateIndex("calendar_integrations_coach").IfNotExists().
			Table(tableIntegrations).
			Columns("coach_id").
			Unique(),
	}

	for _, st := range stmts {
		query, args := st.Query()
		if err := drv.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("migrate availability tables: %w", err)
		}
	}
	return nil
}
