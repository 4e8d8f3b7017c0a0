package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/mkarlsen/orgscan/service"
	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

var (
	runRequestFile string
	runScope       string
	runTarget      string
	runKinds       []string
	runRecipient   string
)

// runCmd executes one inventory request and exits
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one inventory request and exit",
	Long: `Run a single inventory request end to end: resolve the target to
accounts, collect the requested resource kinds, and mail the report.

The request comes either from a JSON file (--request) or from the
scope/target/kinds/recipient flags.`,
	Example: `  orgscan run --request request.json
  orgscan run --scope Account --target acct-prod --kinds EC2,S3 --recipient ops@example.com
  orgscan run --scope Group --target workloads --kinds EC2,RDS,Lambda --recipient ops@example.com`,
	RunE: runInventory,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runRequestFile, "request", "r", "", "Path to a JSON request payload")
	runCmd.Flags().StringVar(&runScope, "scope", string(types.ScopeAccount), "Request scope: Account or Group")
	runCmd.Flags().StringVar(&runTarget, "target", "", "Account or group name to inventory")
	runCmd.Flags().StringSliceVar(&runKinds, "kinds", nil, "Resource kinds to collect (e.g. EC2,S3,Lambda)")
	runCmd.Flags().StringVar(&runRecipient, "recipient", "", "Report recipient address")
}

func runInventory(cmd *cobra.Command, _ []string) error {
	setupLogging()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	req, err := buildRequest()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	metrics, err := telemetry.NoopMetrics()
	if err != nil {
		return err
	}

	resp, err := service.NewFromConfig(awsCfg, cfg, metrics).Run(ctx, req)
	if err != nil {
		return err
	}

	return printResponse(resp)
}

func buildRequest() (*types.InventoryRequest, error) {
	if runRequestFile != "" {
		data, err := os.ReadFile(runRequestFile) // #nosec G304 -- path is intentional user input
		if err != nil {
			return nil, fmt.Errorf("reading request %s: %w", runRequestFile, err)
		}
		var req types.InventoryRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("decoding request %s: %w", runRequestFile, err)
		}
		return &req, nil
	}

	return &types.InventoryRequest{
		Scope:         types.Scope(runScope),
		Target:        runTarget,
		ResourceKinds: runKinds,
		Recipient:     runRecipient,
	}, nil
}

func printResponse(resp *types.InventoryResponse) error {
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
