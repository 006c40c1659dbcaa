package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		statements := []string{
			`
			CREATE TABLE admins (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_admins_email ON admins (email)`,
			`
			CREATE TABLE librarians (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				nic TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL,
				address TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'ACTIVE',
				type TEXT NOT NULL DEFAULT '',
				permissions TEXT NOT NULL DEFAULT '{}',
				password_hash TEXT NOT NULL,
				otp_code TEXT NOT NULL DEFAULT '',
				email_code TEXT NOT NULL DEFAULT '',
				password_recovery_token TEXT NOT NULL DEFAULT '',
				otp_verified BOOLEAN NOT NULL DEFAULT FALSE,
				email_verified BOOLEAN NOT NULL DEFAULT FALSE,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_librarians_email ON librarians (email)`,
			`CREATE UNIQUE INDEX ux_librarians_phone ON librarians (phone)`,
			`
			CREATE TABLE libraries (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				librarian_id TEXT REFERENCES librarians (id),
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_libraries_name ON libraries (name)`,
			`CREATE INDEX ix_libraries_librarian_id ON libraries (librarian_id)`,
			`
			CREATE TABLE users (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				phone TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL,
				nic TEXT NOT NULL DEFAULT '',
				blocked BOOLEAN NOT NULL DEFAULT FALSE,
				plans TEXT NOT NULL DEFAULT '[]',
				library_ids TEXT NOT NULL DEFAULT '[]',
				password_hash TEXT NOT NULL,
				otp_code TEXT NOT NULL DEFAULT '',
				email_code TEXT NOT NULL DEFAULT '',
				otp_verified BOOLEAN NOT NULL DEFAULT FALSE,
				email_verified BOOLEAN NOT NULL DEFAULT FALSE,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_users_email ON users (email)`,
			`
			CREATE TABLE categories (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				library_ids TEXT NOT NULL DEFAULT '[]',
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_categories_name ON categories (name)`,
			`
			CREATE TABLE subcategories (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				category_id TEXT REFERENCES categories (id) NOT NULL,
				name TEXT NOT NULL,
				sub_slug TEXT NOT NULL,
				sort_order INTEGER NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			)`,
			`CREATE UNIQUE INDEX ux_subcategories_category_id_name ON subcategories (category_id, name)`,
			`CREATE UNIQUE INDEX ux_subcategories_sub_slug ON subcategories (sub_slug)`,
			`
			CREATE TABLE authors (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL DEFAULT '',
				died TEXT,
				pen_name TEXT NOT NULL DEFAULT '',
				nationality TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				first_publish_date TEXT,
				profile_image_key TEXT,
				position TEXT NOT NULL DEFAULT '',
				latest_income_id TEXT,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`
			CREATE TABLE author_accounts (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				author_id TEXT REFERENCES authors (id) NOT NULL,
				name TEXT NOT NULL,
				bank TEXT NOT NULL,
				branch TEXT NOT NULL,
				account_number TEXT NOT NULL,
				account_type TEXT NOT NULL,
				currency TEXT NOT NULL,
				swift_code TEXT NOT NULL DEFAULT '',
				iban TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				sort_order INTEGER NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE INDEX ix_author_accounts_author_id ON author_accounts (author_id)`,
			`
			CREATE TABLE author_incomes (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				author_id TEXT REFERENCES authors (id) NOT NULL,
				account_id TEXT REFERENCES author_accounts (id) NOT NULL,
				payment_amount DOUBLE PRECISION NOT NULL,
				payment_date TIMESTAMPTZ NOT NULL,
				payment_status TEXT NOT NULL,
				payment_description TEXT NOT NULL DEFAULT '',
				invoice_key TEXT
			)`,
			`CREATE INDEX ix_author_incomes_author_id ON author_incomes (author_id)`,
			`
			CREATE TABLE author_social_media (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				author_id TEXT REFERENCES authors (id) NOT NULL,
				total_likes INTEGER NOT NULL DEFAULT 0,
				liked_by TEXT NOT NULL DEFAULT '[]',
				total_followers INTEGER NOT NULL DEFAULT 0,
				followed_by TEXT NOT NULL DEFAULT '[]'
			)`,
			`CREATE UNIQUE INDEX ux_author_social_media_author_id ON author_social_media (author_id)`,
			`
			CREATE TABLE books (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				author_id TEXT REFERENCES authors (id) NOT NULL,
				translator_id TEXT,
				category_ids TEXT NOT NULL DEFAULT '[]',
				subcategory_ids TEXT NOT NULL DEFAULT '[]',
				library_ids TEXT NOT NULL DEFAULT '[]',
				isbn TEXT,
				cover_image_key TEXT,
				additional_image_keys TEXT NOT NULL DEFAULT '[]',
				description TEXT NOT NULL DEFAULT '',
				publisher TEXT NOT NULL DEFAULT '',
				publish_date TEXT,
				language TEXT NOT NULL DEFAULT '',
				language_code TEXT NOT NULL DEFAULT '',
				first_publisher TEXT NOT NULL DEFAULT '',
				access_type TEXT NOT NULL DEFAULT '',
				series_number INTEGER,
				view_in_library BOOLEAN NOT NULL DEFAULT FALSE,
				series TEXT NOT NULL DEFAULT '[]',
				material TEXT NOT NULL DEFAULT '[]',
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_books_isbn ON books (isbn)`,
			`CREATE INDEX ix_books_author_id ON books (author_id)`,
			`
			CREATE TABLE material_types (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			)`,
			`CREATE UNIQUE INDEX ux_material_types_name ON material_types (name)`,
			`
			CREATE TABLE mobile_users (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL DEFAULT '',
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				country TEXT NOT NULL DEFAULT '',
				mobile_number TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT 'READER',
				status TEXT NOT NULL DEFAULT 'ACTIVE',
				library_ids TEXT NOT NULL DEFAULT '[]',
				friend_ids TEXT NOT NULL DEFAULT '[]',
				password_hash TEXT NOT NULL,
				profile_picture_key TEXT,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_mobile_users_username ON mobile_users (username)`,
			`CREATE UNIQUE INDEX ux_mobile_users_email ON mobile_users (email)`,
			`
			CREATE TABLE advertisements (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				image_key TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				deleted BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`
			CREATE TABLE pending_blob_deletions (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				blob_key TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				last_error TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE UNIQUE INDEX ux_pending_blob_deletions_blob_key ON pending_blob_deletions (blob_key)`,
		}

		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(ctx context.Context, db *bun.DB) error {
		tables := []string{
			"pending_blob_deletions",
			"advertisements",
			"mobile_users",
			"material_types",
			"books",
			"author_social_media",
			"author_incomes",
			"author_accounts",
			"authors",
			"subcategories",
			"categories",
			"users",
			"libraries",
			"librarians",
			"admins",
		}
		for _, table := range tables {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
