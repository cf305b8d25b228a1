package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/tylerclair/canopy/canvas"
)

func newCallCmd() *cobra.Command {
	var (
		allPages, poly bool
		dataKey        string
		params         []string
	)
	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Execute one request against the configured instance and print the JSON result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Session.InstanceAddress == "" || cfg.Session.AccessToken == "" {
				return errors.New("instance address and access token must be configured")
			}
			values, err := parseParams(params)
			if err != nil {
				return err
			}

			session := canvas.New(cfg.Session.InstanceAddress, cfg.Session.AccessToken,
				canvas.WithMaxPerPage(cfg.Session.MaxPerPage),
				canvas.WithTimeout(cfg.Session.Timeout),
				canvas.WithLogger(log),
			)
			opts := []canvas.RequestOption{canvas.WithDataKey(dataKey)}
			switch {
			case allPages:
				opts = append(opts, canvas.AllPages())
			case poly:
				opts = append(opts, canvas.Poly())
			}

			res, err := session.Execute(cmd.Context(), canvas.NewRequest(args[0], args[1], values, opts...))
			if err != nil {
				var apiErr *canvas.APIError
				if errors.As(err, &apiErr) {
					if out, jerr := apiErr.ToJSON(); jerr == nil {
						fmt.Fprintln(os.Stderr, string(out))
					}
				}
				return err
			}
			if res.Kind == canvas.KindNotPaginated {
				log.Warn().Str("url", res.URL).Msg("response has no pagination links")
			}

			out, err := sonic.ConfigStd.MarshalIndent(res.Data(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&allPages, "all-pages", false, "Follow pagination links and print every item")
	cmd.Flags().BoolVar(&poly, "poly", false, "Depaginate list responses, return anything else as is")
	cmd.Flags().StringVar(&dataKey, "data-key", "", "Key holding the data inside object responses")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Request parameter as key=value (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("all-pages", "poly")
	return cmd
}

func parseParams(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", p)
		}
		values.Add(k, v)
	}
	return values, nil
}
