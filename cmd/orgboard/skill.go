package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orgboard/orgboard/pkg/audit"
	"github.com/orgboard/orgboard/pkg/db"
	"github.com/orgboard/orgboard/pkg/fsys"
	"github.com/orgboard/orgboard/pkg/logger"
	"github.com/orgboard/orgboard/pkg/osutil"
	"github.com/orgboard/orgboard/pkg/presenter"
	"github.com/orgboard/orgboard/pkg/skills"
	"github.com/orgboard/orgboard/pkg/skillsvc"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage orgboard skills",
	Long:  `Install, list, assign, and remove skills for orgboard agents.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills",
	Long: `List skills. Without --agent, lists the global store; with --agent,
lists the skills resolved for that agent across all scope layers.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		agentID, _ := cmd.Flags().GetString("agent")

		service, cleanup := newService(ctx)
		defer cleanup()

		var records []skills.Record
		var err error
		if agentID == "" {
			records, err = service.ListGlobal(ctx)
		} else {
			records, err = service.List(ctx, agentID)
		}
		if err != nil {
			presenter.Error(err, "Failed to list skills")
			os.Exit(1)
		}

		if len(records) == 0 {
			presenter.Info("No skills installed")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSOURCE\tDESCRIPTION")
		for _, record := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", record.ID, record.Name, record.Source, record.Description)
		}
		w.Flush()
	},
}

var skillInstallCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a skill",
	Long: `Install a skill into the global store, or into an agent's store with
--agent. The source is a local path (--path), a repository URL (--url), or
inline content read from a file (--content-file). With no source, an
agent-scoped install reuses an existing global skill of the same name, or a
placeholder skill document is generated.

Examples:
  orgboard skill install writing --path ~/skills/writing
  orgboard skill install writing --url https://github.com/acme/skills/tree/main/writing --agent eng
  orgboard skill install scratch --agent eng`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		req := skillsvc.InstallRequest{
			Scope:     skillsvc.ScopeGlobal,
			SkillName: args[0],
		}
		req.AgentID, _ = cmd.Flags().GetString("agent")
		if req.AgentID != "" {
			req.Scope = skillsvc.ScopeAgent
		}
		req.SourcePath, _ = cmd.Flags().GetString("path")
		req.SourceURL, _ = cmd.Flags().GetString("url")
		req.Description, _ = cmd.Flags().GetString("description")
		req.SourceSkillName, _ = cmd.Flags().GetString("from-skill")

		if contentFile, _ := cmd.Flags().GetString("content-file"); contentFile != "" {
			data, err := os.ReadFile(contentFile)
			if err != nil {
				presenter.Error(err, "Failed to read content file")
				os.Exit(1)
			}
			req.Content = string(data)
		}

		service, cleanup := newService(ctx)
		defer cleanup()

		result, err := service.Install(ctx, req)
		if err != nil {
			presenter.Error(err, "Failed to install skill")
			os.Exit(1)
		}

		if result.Replaced {
			presenter.Success(fmt.Sprintf("Replaced skill '%s' (%s)", result.SkillID, result.SourceKind))
		} else {
			presenter.Success(fmt.Sprintf("Installed skill '%s' (%s)", result.SkillID, result.SourceKind))
		}
		presenter.Info(fmt.Sprintf("Definition: %s", result.InstalledPath))
		for _, path := range result.WorkspaceInstallPaths {
			presenter.Info(fmt.Sprintf("Mirrored to %s", path))
		}
	},
}

var skillRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an installed skill",
	Long: `Remove a skill from the global store, or from an agent's store (plus
its assignment and workspace mirrors) with --agent.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		agentID, _ := cmd.Flags().GetString("agent")

		scope := skillsvc.ScopeGlobal
		if agentID != "" {
			scope = skillsvc.ScopeAgent
		}

		service, cleanup := newService(ctx)
		defer cleanup()

		result, err := service.Remove(ctx, scope, agentID, args[0])
		if err != nil {
			presenter.Error(err, "Failed to remove skill")
			os.Exit(1)
		}

		if result.RemovedFromGlobal || result.RemovedFromAgentStore || result.Unassigned || len(result.WorkspacePathsRemoved) > 0 {
			presenter.Success(fmt.Sprintf("Removed skill '%s'", result.SkillID))
		} else {
			presenter.Warning(fmt.Sprintf("Skill '%s' was not installed", result.SkillID))
		}
	},
}

var skillAssignCmd = &cobra.Command{
	Use:   "assign <name>",
	Short: "Assign an installed skill to an agent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		agentID, _ := cmd.Flags().GetString("agent")

		service, cleanup := newService(ctx)
		defer cleanup()

		written, err := service.Assign(ctx, agentID, args[0])
		if err != nil {
			presenter.Error(err, "Failed to assign skill")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Assigned skill '%s' to agent '%s'", args[0], agentID))
		for _, path := range written {
			presenter.Info(fmt.Sprintf("Mirrored to %s", path))
		}
	},
}

var skillUnassignCmd = &cobra.Command{
	Use:   "unassign <name>",
	Short: "Remove a skill assignment from an agent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		agentID, _ := cmd.Flags().GetString("agent")

		service, cleanup := newService(ctx)
		defer cleanup()

		result, err := service.Unassign(ctx, agentID, args[0])
		if err != nil {
			presenter.Error(err, "Failed to unassign skill")
			os.Exit(1)
		}
		if result.Unassigned || len(result.WorkspacePathsRemoved) > 0 {
			presenter.Success(fmt.Sprintf("Unassigned skill '%s' from agent '%s'", result.SkillID, agentID))
		} else {
			presenter.Warning(fmt.Sprintf("Skill '%s' was not assigned to agent '%s'", result.SkillID, agentID))
		}
	},
}

var skillPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the assembled skills prompt block for an agent",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		agentID, _ := cmd.Flags().GetString("agent")

		service, cleanup := newService(ctx)
		defer cleanup()

		prompt, err := service.BuildPrompt(ctx, agentID)
		if err != nil {
			presenter.Error(err, "Failed to build prompt")
			os.Exit(1)
		}
		fmt.Println(prompt.Text)
	},
}

var skillHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent skill operations",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		recorder, cleanup, err := newRecorder(ctx)
		if err != nil {
			presenter.Error(err, "Failed to open audit log")
			os.Exit(1)
		}
		defer cleanup()

		events, err := recorder.Recent(ctx, limit)
		if err != nil {
			presenter.Error(err, "Failed to read audit log")
			os.Exit(1)
		}
		if len(events) == 0 {
			presenter.Info("No skill operations recorded")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tOPERATION\tSCOPE\tAGENT\tSKILL\tSOURCE")
		for _, event := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				event.OccurredAt.Format("2006-01-02 15:04:05"),
				event.Operation, event.Scope, event.AgentID, event.SkillID, event.SourceKind)
		}
		w.Flush()
	},
}

func init() {
	skillListCmd.Flags().StringP("agent", "a", "", "List skills resolved for this agent")

	skillInstallCmd.Flags().StringP("agent", "a", "", "Install into this agent's store instead of the global store")
	skillInstallCmd.Flags().StringP("path", "p", "", "Local path to a skill directory or its SKILL.md")
	skillInstallCmd.Flags().StringP("url", "u", "", "Repository URL to install from")
	skillInstallCmd.Flags().String("content-file", "", "File whose content becomes the skill definition")
	skillInstallCmd.Flags().StringP("description", "d", "", "Description for a generated skill document")
	skillInstallCmd.Flags().String("from-skill", "", "Skill name to look for inside the repository")

	skillRemoveCmd.Flags().StringP("agent", "a", "", "Remove from this agent's store instead of the global store")
	skillAssignCmd.Flags().StringP("agent", "a", "", "Agent to assign the skill to")
	skillAssignCmd.MarkFlagRequired("agent")
	skillUnassignCmd.Flags().StringP("agent", "a", "", "Agent to unassign the skill from")
	skillUnassignCmd.MarkFlagRequired("agent")
	skillPromptCmd.Flags().StringP("agent", "a", "", "Agent to assemble the prompt for")
	skillPromptCmd.MarkFlagRequired("agent")
	skillHistoryCmd.Flags().IntP("limit", "n", 20, "Number of events to show")

	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillInstallCmd)
	skillCmd.AddCommand(skillRemoveCmd)
	skillCmd.AddCommand(skillAssignCmd)
	skillCmd.AddCommand(skillUnassignCmd)
	skillCmd.AddCommand(skillPromptCmd)
	skillCmd.AddCommand(skillHistoryCmd)
	rootCmd.AddCommand(skillCmd)
}

// newService wires the service over the OS-backed ports. The audit recorder
// is best-effort: an unopenable database downgrades to no recording.
func newService(ctx context.Context) (*skillsvc.Service, func()) {
	fs := fsys.NewOSStore()
	pr := fsys.OSPathResolver{}

	baseDir, err := skillsvc.DefaultBaseDir()
	if err != nil {
		presenter.Error(err, "Failed to determine base directory")
		os.Exit(1)
	}

	dirs := viper.GetStringSlice("workspace.skill_dirs")
	if len(dirs) == 0 {
		dirs = []string{".claude/skills"}
	}
	opts := []skillsvc.Option{
		skillsvc.WithRunner(osutil.ExecRunner{}),
		skillsvc.WithWorkspaceDirs(dirs...),
	}

	cleanup := func() {}
	if recorder, closeFn, err := newRecorder(ctx); err == nil {
		opts = append(opts, skillsvc.WithRecorder(recorder))
		cleanup = closeFn
	} else {
		logger.G(ctx).WithError(err).Debug("audit log unavailable, skipping recording")
	}

	return skillsvc.NewService(fs, pr, skillsvc.NewLayout(baseDir, pr), opts...), cleanup
}

func newRecorder(ctx context.Context) (*audit.Recorder, func(), error) {
	dbPath, err := db.DefaultPath()
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	recorder, err := audit.NewRecorder(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return recorder, func() { conn.Close() }, nil
}
