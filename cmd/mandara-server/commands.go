package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/config"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/synthesis"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/auth"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
)

func synthesizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Build FHIR artifacts from a workspace file without a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsPath, _ := cmd.Flags().GetString("workspace")
			outDir, _ := cmd.Flags().GetString("out")
			verify, _ := cmd.Flags().GetBool("verify")

			if outDir == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				outDir = cfg.ExportDir
			}
			return runSynthesize(cmd.OutOrStdout(), wsPath, outDir, verify, synthesis.New())
		},
	}
	cmd.Flags().String("workspace", "", "Path to the workspace JSON file")
	cmd.Flags().String("out", "", "Output directory (defaults to EXPORT_DIR)")
	cmd.Flags().Bool("verify", false, "Fail when a Condition code does not resolve against the workspace registry")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Build the collection bundle of a workspace file and POST it to a FHIR server",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsPath, _ := cmd.Flags().GetString("workspace")
			url, _ := cmd.Flags().GetString("url")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if url != "" {
				cfg.FHIRPushURL = url
			}
			if cfg.FHIRPushURL == "" {
				return fmt.Errorf("--url or FHIR_PUSH_URL is required")
			}
			pusher, err := newPusher(cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			return runPush(cmd.Context(), cmd.OutOrStdout(), wsPath, pusher, synthesis.New())
		},
	}
	cmd.Flags().String("workspace", "", "Path to the workspace JSON file")
	cmd.Flags().String("url", "", "Receiver FHIR base URL (defaults to FHIR_PUSH_URL)")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed practitioner token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			clinic, _ := cmd.Flags().GetString("clinic")
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if clinic == "" {
				clinic = cfg.DefaultClinic
			}
			if !db.IsValidClinicID(clinic) {
				return fmt.Errorf("invalid clinic identifier %q", clinic)
			}
			token, err := auth.IssueToken(jwtConfig(cfg), subject, clinic, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("subject", "dev-practitioner", "Token subject (user id)")
	cmd.Flags().String("clinic", "", "Clinic id (defaults to DEFAULT_CLINIC)")
	cmd.Flags().StringSlice("role", []string{auth.RolePractitioner}, "Role to grant; repeatable")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	return cmd
}

func loadWorkspace(path string) (*synthesis.Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	defer f.Close()
	return synthesis.ReadWorkspace(f)
}

// runSynthesize writes every artifact of the workspace to outDir and prints
// the written paths followed by the build report.
func runSynthesize(out io.Writer, wsPath, outDir string, verify bool, synth *synthesis.Synthesizer) error {
	ws, err := loadWorkspace(wsPath)
	if err != nil {
		return err
	}
	b, report, snap, err := ws.Build(synth)
	if err != nil {
		return err
	}
	if verify {
		if err := synthesis.VerifyReferences(b, snap); err != nil {
			return fmt.Errorf("verify references: %w", err)
		}
	}

	artifacts, err := synthesis.Artifacts(b)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		path, err := fhir.WriteArtifact(outDir, a)
		if err != nil {
			return err
		}
		if a.Resources > 0 {
			fmt.Fprintf(out, "wrote %s (%d bytes, %d lines)\n", path, len(a.Body), a.Resources)
		} else {
			fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(a.Body))
		}
	}
	printReport(out, report)
	return nil
}

func runPush(ctx context.Context, out io.Writer, wsPath string, pusher synthesis.Pusher, synth *synthesis.Synthesizer) error {
	ws, err := loadWorkspace(wsPath)
	if err != nil {
		return err
	}
	b, report, _, err := ws.Build(synth)
	if err != nil {
		return err
	}
	a, err := synthesis.BundleArtifact(b)
	if err != nil {
		return err
	}
	status, err := pusher.Push(ctx, a)
	if err != nil {
		return fmt.Errorf("push bundle %s: %w", synthesis.GenerationID(b), err)
	}
	fmt.Fprintf(out, "pushed bundle %s (%d entries), receiver answered %d\n",
		synthesis.GenerationID(b), len(b.Entry), status)
	printReport(out, report)
	return nil
}

func printReport(out io.Writer, report *synthesis.Report) {
	if report == nil || report.Clean() {
		return
	}
	for _, d := range report.DanglingReferences {
		fmt.Fprintf(out, "omitted: %s\n", d)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

func printMigrationStatus(out io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}
