package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/mailbrief/internal/models"
)

var (
	todoAssignee string
	todoPriority string
)

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "List and manage todos",
	Long: `List todos, including those derived from analyzed threads.

Subcommands:
  add       Create a todo
  done      Mark a todo completed
  reopen    Mark a todo not completed
  rm        Delete a todo

Examples:
  mailbrief todos
  mailbrief todos add "Send revised budget" --priority high
  mailbrief todos done k3x9f2`,
	RunE: runTodosList,
}

var todosAddCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Create a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodosAdd,
}

var todosDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a todo completed",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setTodoCompleted(args[0], true) },
}

var todosReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Mark a todo not completed",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setTodoCompleted(args[0], false) },
}

var todosRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodosRm,
}

func init() {
	todosAddCmd.Flags().StringVarP(&todoAssignee, "assignee", "a", "", "who the todo is for")
	todosAddCmd.Flags().StringVarP(&todoPriority, "priority", "p", models.PriorityMedium, "high, medium or low")

	todosCmd.AddCommand(todosAddCmd)
	todosCmd.AddCommand(todosDoneCmd)
	todosCmd.AddCommand(todosReopenCmd)
	todosCmd.AddCommand(todosRmCmd)
}

func runTodosList(cmd *cobra.Command, args []string) error {
	todos, err := apiClient.ListTodos(context.Background())
	if err != nil {
		return fmt.Errorf("list todos: %w", err)
	}
	if len(todos) == 0 {
		fmt.Println("No todos.")
		return nil
	}

	for _, t := range todos {
		marker := "[ ]"
		if t.Completed {
			marker = defaultTheme.completedStyle().Render("[x]")
		}
		fmt.Printf("%s %-8s [%s] %s", marker, models.MustRecordIDString(t.ID), t.Priority, t.Description)
		if t.Assignee != nil && *t.Assignee != "" {
			fmt.Printf(" (%s)", *t.Assignee)
		}
		if t.ThreadTitle != "" {
			fmt.Printf("  %s", defaultTheme.hintStyle().Render("from: "+t.ThreadTitle))
		}
		fmt.Println()
	}
	return nil
}

func runTodosAdd(cmd *cobra.Command, args []string) error {
	in := models.TodoInput{
		Description: args[0],
		Priority:    todoPriority,
	}
	if todoAssignee != "" {
		in.Assignee = &todoAssignee
	}

	todo, err := apiClient.CreateTodo(context.Background(), in)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	fmt.Printf("Created %s\n", models.MustRecordIDString(todo.ID))
	return nil
}

func setTodoCompleted(id string, completed bool) error {
	if _, err := apiClient.SetTodoCompleted(context.Background(), id, completed); err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if completed {
		fmt.Printf("Completed %s\n", id)
	} else {
		fmt.Printf("Reopened %s\n", id)
	}
	return nil
}

func runTodosRm(cmd *cobra.Command, args []string) error {
	if err := apiClient.DeleteTodo(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
