package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create, list and delete projects. Each project is an isolated document corpus with its own vector collection.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project and its index",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

func init() {
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.CreateProject(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	cmd.Printf("Created project %s\n", titleStyle.Render(project.Name))
	cmd.Printf("  ID: %s\n", project.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projects, err := projectService.ListProjects(context.Background())
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if len(projects) == 0 {
		cmd.Println("No projects yet. Create one with: ragline project create <name>")
		return nil
	}

	cmd.Println("Projects:")
	cmd.Println()
	for i := range projects {
		cmd.Printf("  %s\n", titleStyle.Render(projects[i].Name))
		cmd.Printf("    ID:      %s\n", projects[i].ID)
		cmd.Printf("    Created: %s\n", projects[i].CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}
	cmd.Printf("Total: %d projects\n", len(projects))
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	if err := projectService.DeleteProject(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	cmd.Printf("Deleted project %s and its vector collection.\n", args[0])
	return nil
}
