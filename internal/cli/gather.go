package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hub-versions/internal/app"
)

type gatherOptions struct {
	APIURL           string
	Token            string
	Username         string
	Password         string
	Repositories     []string
	PageSize         int
	Workers          int
	HTTPTimeout      int
	HTTPRetries      int
	HTTPRetryDelayMs int
	Format           string
	Output           string
}

func newGatherCommand() *cobra.Command {
	opts := gatherOptions{}
	cmd := &cobra.Command{
		Use:   "gather",
		Short: "Walk the hub repositories and report minimal engine versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGather(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.APIURL, "api-url", "https://console.redhat.com", "Hub API base URL")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Bearer token for the hub API")
	cmd.Flags().StringVar(&opts.Username, "username", "", "Basic auth username (when no token is set)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Basic auth password")
	cmd.Flags().StringSliceVar(&opts.Repositories, "repository", nil, "Repositories to walk (validated, certified; default both)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 100, "Listing page size")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Concurrent version lookups per repository")
	cmd.Flags().IntVar(&opts.HTTPTimeout, "http-timeout", 60, "HTTP timeout in seconds")
	cmd.Flags().IntVar(&opts.HTTPRetries, "http-retries", 3, "HTTP retry attempts")
	cmd.Flags().IntVar(&opts.HTTPRetryDelayMs, "http-retry-delay-ms", 200, "Base HTTP retry delay in milliseconds")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "Report format (table, yaml, xlsx)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Report file path (yaml and xlsx formats)")

	_ = viper.BindPFlag("api_url", cmd.Flags().Lookup("api-url"))
	_ = viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("username", cmd.Flags().Lookup("username"))
	_ = viper.BindPFlag("password", cmd.Flags().Lookup("password"))
	_ = viper.BindPFlag("repositories", cmd.Flags().Lookup("repository"))
	_ = viper.BindPFlag("page_size", cmd.Flags().Lookup("page-size"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("http_timeout", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", cmd.Flags().Lookup("http-retry-delay-ms"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))

	return cmd
}

func runGather(ctx context.Context, cmd *cobra.Command, opts gatherOptions) error {
	service := app.NewService()
	result, err := service.Gather(ctx, app.GatherRequest{
		APIURL:           resolveString(cmd, opts.APIURL, "api_url", "api-url"),
		Token:            resolveString(cmd, opts.Token, "token", "token"),
		Username:         resolveString(cmd, opts.Username, "username", "username"),
		Password:         resolveString(cmd, opts.Password, "password", "password"),
		Repositories:     resolveStrings(cmd, opts.Repositories, "repositories", "repository"),
		PageSize:         resolveInt(cmd, opts.PageSize, "page_size", "page-size"),
		Workers:          resolveInt(cmd, opts.Workers, "workers", "workers"),
		HTTPTimeoutSec:   resolveInt(cmd, opts.HTTPTimeout, "http_timeout", "http-timeout"),
		HTTPRetries:      resolveInt(cmd, opts.HTTPRetries, "http_retries", "http-retries"),
		HTTPRetryDelayMs: resolveInt(cmd, opts.HTTPRetryDelayMs, "http_retry_delay_ms", "http-retry-delay-ms"),
		Format:           resolveString(cmd, opts.Format, "format", "format"),
		OutputPath:       resolveString(cmd, opts.Output, "output", "output"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("gathered %d collections across %d repositories (%d warnings)\n",
		result.RowCount, len(result.Repositories), len(result.Warnings))
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}
