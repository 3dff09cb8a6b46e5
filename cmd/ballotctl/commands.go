package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	ballothttp "ballot/contexts/governance/ballot-engine/transport/http"
	"ballot/internal/platform/apiclient"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL   string
	identity string
	retries  int
}

func (o *rootOptions) client() (*apiclient.Client, error) {
	return apiclient.New(o.apiURL, apiclient.Options{
		Identity:     o.identity,
		RetryMax:     o.retries,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	})
}

func (o *rootOptions) requireIdentity() error {
	if o.identity == "" {
		return fmt.Errorf("caller identity is required: pass --as or set BALLOT_IDENTITY")
	}
	return nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ballotctl",
		Short:         "Manage weighted ballots with delegation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiDefault := os.Getenv("BALLOT_API_URL")
	if apiDefault == "" {
		apiDefault = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", apiDefault, "ballot API base URL")
	root.PersistentFlags().StringVar(&opts.identity, "as", os.Getenv("BALLOT_IDENTITY"), "caller identity (hex address)")
	root.PersistentFlags().IntVar(&opts.retries, "retries", 3, "retries for transport failures and 5xx responses")

	root.AddCommand(
		newDeployCommand(opts),
		newGiveRightCommand(opts),
		newVoteCommand(opts),
		newDelegateCommand(opts),
		newProposalsCommand(opts),
		newWinnerCommand(opts),
		newVoterCommand(opts),
	)
	return root
}

func newDeployCommand(opts *rootOptions) *cobra.Command {
	var (
		proposals []string
		strict    bool
		ballotID  string
	)
	c := &cobra.Command{
		Use:   "deploy",
		Short: "Create a ballot; the caller becomes chairperson",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if err := opts.requireIdentity(); err != nil {
				return err
			}
			if len(proposals) == 0 {
				return fmt.Errorf("at least one --proposal is required")
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := client.DeployBallot(c.Context(), ballothttp.InitializeBallotRequest{
				BallotID:                  ballotID,
				Proposals:                 proposals,
				RequireRegisteredDelegate: strict,
			})
			if err != nil {
				return err
			}
			return printJSON(c, resp)
		},
	}
	c.Flags().StringArrayVar(&proposals, "proposal", nil, "proposal name (repeatable, at most 32 bytes)")
	c.Flags().BoolVar(&strict, "strict-delegation", false, "reject delegation to identities without voting rights")
	c.Flags().StringVar(&ballotID, "id", "", "ballot id (generated when empty)")
	return c
}

func newGiveRightCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "give-right BALLOT VOTER",
		Short: "Grant voting weight 1 to VOTER (chairperson only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := opts.requireIdentity(); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := client.GiveRightToVote(c.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(c, resp)
		},
	}
}

func newVoteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vote BALLOT INDEX",
		Short: "Cast the caller's full weight for proposal INDEX",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := opts.requireIdentity(); err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("proposal index %q is not an integer", args[1])
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := client.Vote(c.Context(), args[0], index)
			if err != nil {
				return err
			}
			return printJSON(c, resp)
		},
	}
}

func newDelegateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delegate BALLOT TO",
		Short: "Delegate the caller's weight to TO",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := opts.requireIdentity(); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := client.Delegate(c.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(c, resp)
		},
	}
}

func newProposalsCommand(opts *rootOptions) *cobra.Command {
	var index int
	c := &cobra.Command{
		Use:   "proposals BALLOT",
		Short: "List proposals with their vote counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			if c.Flags().Changed("index") {
				resp, err := client.Proposal(c.Context(), args[0], index)
				if err != nil {
					return err
				}
				return printJSON(c, resp)
			}
			resp, err := client.Proposals(c.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(c, resp)
		},
	}
	c.Flags().IntVar(&index, "index", 0, "show a single proposal")
	return c
}

func newWinnerCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "winner BALLOT",
		Short: "Show the winning proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := client.Winner(c.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(c, resp)
		},
	}
}

func newVoterCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "voter BALLOT ADDRESS",
		Short: "Show a voter record",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := client.Voter(c.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(c, resp)
		},
	}
}

func printJSON(c *cobra.Command, value any) error {
	encoder := json.NewEncoder(c.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
