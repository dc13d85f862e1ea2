package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-quality-cli/internal/export"
	"github.com/sells-group/lead-quality-cli/internal/leadcsv"
	"github.com/sells-group/lead-quality-cli/internal/resilience"
	"github.com/sells-group/lead-quality-cli/pkg/hubspot"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <leads.csv>",
	Short: "Score leads and upload them to HubSpot",
	Long: `Runs the scoring pipeline over a lead CSV and creates the resulting
contacts in HubSpot via the CRM v3 API. Requires a private app access
token (LEADQ_HUBSPOT_TOKEN or hubspot.token in config).

Contacts without an email address are skipped and reported as failed,
matching HubSpot's own import behavior.`,
	Args: cobra.ExactArgs(1),
	RunE: runUploadCmd,
}

func init() {
	f := uploadCmd.Flags()
	f.Int64("seed", 0, "random seed (overrides config)")
	f.Bool("dry-run", false, "score and format but skip the upload")

	rootCmd.AddCommand(uploadCmd)
}

func runUploadCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	modelCfg := cfg.Model
	if cmd.Flags().Changed("seed") {
		modelCfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}

	log := zap.L().With(zap.String("command", "upload"))

	leads, err := leadcsv.ReadFile(args[0])
	if err != nil {
		return err
	}

	result, err := scoreLeads(leads, cfg.Feature, modelCfg)
	if err != nil {
		return err
	}

	payload := export.New(cfg.Export).FormatContacts(result.Leads)
	contacts := make([]map[string]any, 0, len(payload.Contacts))
	for _, c := range payload.Contacts {
		contacts = append(contacts, c.Properties())
	}

	if dryRun {
		log.Info("dry run, skipping upload", zap.Int("contacts", len(contacts)))
		fmt.Printf("Would upload %d contacts (%d hot leads)\n",
			payload.Summary.TotalContacts, payload.Summary.HotLeads)
		return nil
	}

	client, err := hubspot.NewClient(cfg.HubSpot.Token,
		hubspot.WithBaseURL(cfg.HubSpot.BaseURL),
		hubspot.WithRateLimit(cfg.HubSpot.RateLimit),
	)
	if err != nil {
		return err
	}

	if err := client.TestConnection(ctx); err != nil {
		return err
	}
	log.Info("hubspot connection verified")

	uploadResult := hubspot.UploadContacts(ctx, newRetryingClient(client), contacts, hubspot.UploadOptions{
		BatchSize:   cfg.HubSpot.BatchSize,
		PhoneRegion: cfg.HubSpot.PhoneRegion,
	})

	log.Info("upload complete",
		zap.Int("successful", uploadResult.Successful),
		zap.Int("failed", uploadResult.Failed),
	)
	fmt.Printf("Upload complete: %d successful, %d failed\n",
		uploadResult.Successful, uploadResult.Failed)
	for _, msg := range uploadResult.Errors {
		fmt.Fprintln(os.Stderr, "  "+msg)
	}
	return nil
}

// retryingClient wraps a hubspot.Client so that transient failures
// (429s, 5xx, connection resets) are retried with backoff. Conflicts
// and validation errors pass through unchanged.
type retryingClient struct {
	hubspot.Client
	policy resilience.Policy
}

func newRetryingClient(c hubspot.Client) *retryingClient {
	p := resilience.DefaultPolicy()
	p.ShouldRetry = retryableHubSpotError
	p.OnRetry = resilience.Logger("hubspot", "create contact")
	return &retryingClient{Client: c, policy: p}
}

func (c *retryingClient) CreateContact(ctx context.Context, properties map[string]any) (*hubspot.ContactResponse, error) {
	return resilience.Retry(ctx, c.policy, func(ctx context.Context) (*hubspot.ContactResponse, error) {
		return c.Client.CreateContact(ctx, properties)
	})
}

func retryableHubSpotError(err error) bool {
	var apiErr *hubspot.APIError
	if eris.As(err, &apiErr) {
		return resilience.TransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
