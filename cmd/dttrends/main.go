package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ntefft/dt-trends/internal/server"
)

func main() {
	// Optional .env with baseline-constant overrides; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "dttrends",
		Short: "Drinking-and-driving prevalence estimation and mixing sensitivity analysis",
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [study-path]",
		Short: "Validate a study file without running the estimator",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func estimateCmd() *cobra.Command {
	var mix float64

	cmd := &cobra.Command{
		Use:   "estimate [study-path]",
		Short: "Run the estimator once per reference scenario at a fixed mixing level",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runEstimate(args[0], mix)
		},
	}

	cmd.Flags().Float64Var(&mix, "mix", 0, "excess mixing percentage to evaluate at")
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep [study-path]",
		Short: "Sweep the excess-mixing grid and reconcile against the published targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSweep(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [study-path]",
		Short: "Start the local results API for the plotting front end",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv := server.New(args[0], port)
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
