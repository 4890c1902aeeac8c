// Package main seeds a fresh database with the fixed rows the identity
// authority expects to already exist: reserved handle prefixes, protected
// name entries, and the first-party OAuth client the façade issues tokens
// under. Ported from the teacher's sql/seed_data.go, restructured as a
// cobra command tree the way dexidp-dex's cmd/poke does, since seeding now
// has independent, separately-runnable concerns instead of one flat script.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/entativa/eid/internal/config"
	"github.com/entativa/eid/internal/oauth"
	"github.com/entativa/eid/internal/store"
	"github.com/entativa/eid/internal/svc"
	"github.com/entativa/eid/third_party/database"

	"github.com/zeromicro/go-zero/core/conf"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "eidseed",
		Short: "Seed fixed rows required by a fresh entativa id database",
	}
	root.PersistentFlags().StringVar(&configFile, "f", "etc/eidserver.yaml", "the config file")

	root.AddCommand(
		commandReserved(&configFile),
		commandProtected(&configFile),
		commandClient(&configFile),
		commandAll(&configFile),
	)
	return root
}

func loadHandleRepo(configFile string) (*store.HandleRepo, func(), error) {
	var c config.Config
	conf.MustLoad(configFile, &c)

	db, err := database.NewPostgresConnection(c.Database)
	if err != nil {
		return nil, nil, err
	}
	base := store.NewBase(db)
	return store.NewHandleRepo(base), func() { db.Close() }, nil
}

func commandReserved(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reserved",
		Short: "Seed reserved handle prefixes (admin, support, api, ...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := loadHandleRepo(*configFile)
			if err != nil {
				return err
			}
			defer closeFn()
			n, err := seedReservedHandles(cmd.Context(), repo)
			if err != nil {
				return fmt.Errorf("seed reserved handles: %w", err)
			}
			fmt.Printf("seeded %d reserved handles\n", n)
			return nil
		},
	}
}

func commandProtected(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "protected",
		Short: "Seed protected-name entries (celebrities, brands, government accounts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := loadHandleRepo(*configFile)
			if err != nil {
				return err
			}
			defer closeFn()
			n, err := seedProtectedEntries(cmd.Context(), repo)
			if err != nil {
				return fmt.Errorf("seed protected entries: %w", err)
			}
			fmt.Printf("seeded %d protected entries\n", n)
			return nil
		},
	}
}

func commandClient(configFile *string) *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Seed the first-party OAuth client row the façade issues tokens under",
		RunE: func(cmd *cobra.Command, args []string) error {
			var c config.Config
			conf.MustLoad(*configFile, &c)

			db, err := database.NewPostgresConnection(c.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			base := store.NewBase(db)
			clients := store.NewOAuthClientRepo(base)
			registry := oauth.NewClientRegistry(clients)

			if err := seedFirstPartyClient(cmd.Context(), registry, secret); err != nil {
				return fmt.Errorf("seed first-party client: %w", err)
			}
			fmt.Printf("seeded first-party oauth client %s\n", svc.FirstPartyClientID)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "client secret for the first-party client (required)")
	return cmd
}

func commandAll(configFile *string) *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every seed step against a fresh database",
		RunE: func(cmd *cobra.Command, args []string) error {
			var c config.Config
			conf.MustLoad(*configFile, &c)

			db, err := database.NewPostgresConnection(c.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			base := store.NewBase(db)
			handles := store.NewHandleRepo(base)
			clients := store.NewOAuthClientRepo(base)
			registry := oauth.NewClientRegistry(clients)

			ctx := cmd.Context()

			nReserved, err := seedReservedHandles(ctx, handles)
			if err != nil {
				return fmt.Errorf("seed reserved handles: %w", err)
			}
			fmt.Printf("seeded %d reserved handles\n", nReserved)

			nProtected, err := seedProtectedEntries(ctx, handles)
			if err != nil {
				return fmt.Errorf("seed protected entries: %w", err)
			}
			fmt.Printf("seeded %d protected entries\n", nProtected)

			if secret == "" {
				return fmt.Errorf("--secret is required to seed the first-party oauth client")
			}
			if err := seedFirstPartyClient(ctx, registry, secret); err != nil {
				return fmt.Errorf("seed first-party client: %w", err)
			}
			fmt.Printf("seeded first-party oauth client %s\n", svc.FirstPartyClientID)

			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "client secret for the first-party client (required)")
	return cmd
}

var reservedPrefixes = []struct {
	handle string
	class  string
}{
	{"admin", "system"},
	{"administrator", "system"},
	{"support", "system"},
	{"help", "system"},
	{"api", "system"},
	{"root", "system"},
	{"security", "system"},
	{"moderator", "system"},
	{"staff", "system"},
	{"official", "system"},
	{"entativa", "brand"},
	{"eid", "brand"},
	{"null", "reserved_word"},
	{"undefined", "reserved_word"},
	{"anonymous", "reserved_word"},
}

func seedReservedHandles(ctx context.Context, repo *store.HandleRepo) (int, error) {
	seeded := 0
	for _, p := range reservedPrefixes {
		lower := store.Normalize(p.handle)
		if _, ok, err := repo.IsReserved(ctx, lower); err != nil {
			return seeded, err
		} else if ok {
			continue
		}
		if err := repo.Base.DB.ExecContext(ctx,
			`INSERT INTO reserved_handles (id, handle_lower, reservation_class, created_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (handle_lower) DO NOTHING`,
			uuid.New(), lower, p.class); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

// handle is the protected figure's own handle, compared directly against
// BestMatch's candidate (see internal/handleengine/similarity.go) — kept
// distinct from name so a near-miss against the handle itself (scenario 1:
// {name:"Elon Musk", handle:"elonmusk"}, check("elonmusks") ≈0.888) is
// caught without needing the handle duplicated into aliases.
var protectedSeeds = []struct {
	name      string
	handle    string
	aliases   []string
	tier      store.ProtectedEntryTier
	threshold float64
}{
	{"Elon Musk", "elonmusk", nil, store.TierUltraHigh, 0.85},
	{"Entativa Official", "entativaofficial", []string{"entativahq"}, store.TierUltraHigh, 0.92},
	{"Office of the President", "potus", []string{"president"}, store.TierUltraHigh, 0.95},
	{"World Health Organization", "worldhealthorg", []string{"who"}, store.TierHigh, 0.88},
	{"United Nations", "unitednations", []string{"un"}, store.TierHigh, 0.88},
	{"Reuters", "reuters", []string{"reutersnews"}, store.TierMedium, 0.85},
}

func seedProtectedEntries(ctx context.Context, repo *store.HandleRepo) (int, error) {
	existing, err := repo.ProtectedCandidates(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.HandleLower] = true
	}

	seeded := 0
	for _, p := range protectedSeeds {
		lower := store.Normalize(p.handle)
		if seen[lower] {
			continue
		}
		if err := repo.Base.DB.ExecContext(ctx,
			`INSERT INTO protected_entries (id, name, handle_lower, aliases, tier, threshold, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, now())
			 ON CONFLICT (handle_lower) DO NOTHING`,
			uuid.New(), p.name, lower, store.StringArray(p.aliases), p.tier, p.threshold); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

func seedFirstPartyClient(ctx context.Context, registry *oauth.ClientRegistry, secret string) error {
	client := &store.OAuthClient{
		ClientID:      svc.FirstPartyClientID.String(),
		RedirectURIs:  store.StringArray{},
		AllowedScopes: store.StringArray{"identity:read", "identity:write", "handles:read", "handles:write"},
		Trusted:       true,
		Public:        false,
	}
	return registry.Register(ctx, client, secret)
}
