package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig points at a Supabase project. Either DSN or ProjectURL with
// Password is needed for the database connection.
type SupabaseConfig struct {
	// DSN is the direct Postgres connection string and wins over ProjectURL.
	DSN string
	// ProjectURL looks like https://<project-ref>.supabase.co.
	ProjectURL string
	// APIKey enables the REST probe. Use the service_role key.
	APIKey string
	// Password of the postgres database user.
	Password string

	Pool PostgresConfig
}

// SupabaseClient holds the Postgres pool of a Supabase project and, when an
// API key is configured, the REST client used for health checks.
type SupabaseClient struct {
	cfg  SupabaseConfig
	pool *pgxpool.Pool
	rest *supabase.Client
}

func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{cfg: cfg}
}

// Connect opens the database pool. The store always needs the direct
// connection, so a REST-only configuration fails.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.ProjectURL != "" && c.cfg.APIKey != "" {
		rest, err := supabase.NewClient(c.cfg.ProjectURL, c.cfg.APIKey, nil)
		if err != nil {
			return fmt.Errorf("supabase rest client: %w", err)
		}
		c.rest = rest
	}

	dsn, err := c.directDSN()
	if err != nil {
		return err
	}

	pool, err := openPool(ctx, dsn, c.cfg.Pool, withoutStatementCache)
	if err != nil {
		return fmt.Errorf("supabase: %w", err)
	}
	c.pool = pool
	return nil
}

func (c *SupabaseClient) Close() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func (c *SupabaseClient) Pool() *pgxpool.Pool {
	return c.pool
}

// SDK returns the REST client, nil without an API key.
func (c *SupabaseClient) SDK() *supabase.Client {
	return c.rest
}

// Ping selects one source id through the REST API. Without an API key it does nothing.
func (c *SupabaseClient) Ping(ctx context.Context) error {
	if c.rest == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := c.rest.From("sources").Select("id", "", false).Limit(1, "").Execute(); err != nil {
		return fmt.Errorf("supabase REST ping: %w", err)
	}
	return nil
}

// directDSN returns cfg.DSN or derives db.<ref>.supabase.co from the project URL.
func (c *SupabaseClient) directDSN() (string, error) {
	if c.cfg.DSN != "" {
		return c.cfg.DSN, nil
	}
	ref, err := projectRef(c.cfg.ProjectURL)
	if err != nil {
		return "", err
	}
	if c.cfg.Password == "" {
		return "", errors.New("supabase: database password is required without a dsn")
	}

	dsn := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword("postgres", c.cfg.Password),
		Host:     "db." + ref + ".supabase.co:5432",
		Path:     "/postgres",
		RawQuery: "sslmode=require",
	}
	return dsn.String(), nil
}

func projectRef(projectURL string) (string, error) {
	if projectURL == "" {
		return "", errors.New("supabase: project url is required without a dsn")
	}
	u, err := url.Parse(projectURL)
	if err != nil {
		return "", fmt.Errorf("supabase: parse project url: %w", err)
	}
	ref, suffix, ok := strings.Cut(u.Hostname(), ".")
	if !ok || ref == "" || suffix == "" {
		return "", fmt.Errorf("supabase: project url %q is not https://<ref>.supabase.co", projectURL)
	}
	return ref, nil
}

// withoutStatementCache suits the Supabase pooler, which does not keep
// prepared statements between transactions.
func withoutStatementCache(cfg *pgxpool.Config) {
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	cfg.ConnConfig.StatementCacheCapacity = 0
	cfg.ConnConfig.DescriptionCacheCapacity = 0
}
