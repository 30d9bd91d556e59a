package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"iclicker-monitor/internal/cli"
	"iclicker-monitor/internal/schedule"

	"github.com/spf13/cobra"
)

func openStore() (*schedule.SQLiteStore, error) {
	store, err := schedule.OpenSQLite(cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open course database: %w", err)
	}
	return store, nil
}

func coursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage the weekly course schedule",
	}
	cmd.AddCommand(listCoursesCmd())
	cmd.AddCommand(addCourseCmd())
	cmd.AddCommand(updateCourseCmd())
	cmd.AddCommand(deleteCourseCmd())
	cmd.AddCommand(importCoursesCmd())
	cmd.AddCommand(exportCoursesCmd())
	cmd.AddCommand(searchCoursesCmd())
	cmd.AddCommand(currentCourseCmd())
	return cmd
}

func printCourses(cmd *cobra.Command, courses []schedule.Course) error {
	if len(courses) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No courses found. Use 'iclicker-monitor courses add' to create one."))
		return nil
	}
	t := cli.NewTable(cmd.OutOrStdout(), "ID", "Day", "Start", "End", "Code", "Name")
	for _, c := range courses {
		code := c.Code
		if code == "" {
			code = cli.SubtleStyle.Render("-")
		}
		t.Row(c.ID, c.Day, c.Start, c.End, code, c.Name)
	}
	return t.Flush()
}

func listCoursesCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses, optionally for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var courses []schedule.Course
			if day != "" {
				d, err := schedule.ParseWeekday(day)
				if err != nil {
					return err
				}
				courses, err = store.CoursesForDay(cmd.Context(), d)
				if err != nil {
					return err
				}
			} else if courses, err = store.All(cmd.Context()); err != nil {
				return err
			}
			return printCourses(cmd, courses)
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "only list this weekday (Mon, 1, 周一, ...)")
	return cmd
}

// courseFlags are the editable course fields shared by add and update.
type courseFlags struct {
	day, start, end, code, name string
}

func (f *courseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.day, "day", "", "weekday (Mon..Sun, 1-7 or 周一..周日)")
	cmd.Flags().StringVar(&f.start, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&f.end, "end", "", "end time HH:MM")
	cmd.Flags().StringVar(&f.code, "code", "", "course code")
	cmd.Flags().StringVar(&f.name, "name", "", "course name, also the icon file name")
}

// apply overwrites the fields of c whose flags were set.
func (f *courseFlags) apply(cmd *cobra.Command, c *schedule.Course) error {
	var err error
	if cmd.Flags().Changed("day") {
		if c.Day, err = schedule.ParseWeekday(f.day); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("start") {
		if c.Start, err = schedule.NormalizeClock(f.start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if cmd.Flags().Changed("end") {
		if c.End, err = schedule.NormalizeClock(f.end); err != nil {
			return fmt.Errorf("end: %w", err)
		}
	}
	if cmd.Flags().Changed("code") {
		c.Code = f.code
	}
	if cmd.Flags().Changed("name") {
		c.Name = f.name
	}
	return nil
}

func addCourseCmd() *cobra.Command {
	var f courseFlags
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a course",
		Example: `  iclicker-monitor courses add --day Mon --start 09:00 --end 10:40 --code MATH101 --name Algebra`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c schedule.Course
			if err := f.apply(cmd, &c); err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.Add(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Added course %d: %s", id, c)))
			return nil
		},
	}
	f.register(cmd)
	for _, name := range []string{"day", "start", "end", "name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid course id %q", arg)
	}
	return id, nil
}

func updateCourseCmd() *cobra.Command {
	var f courseFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			c, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, &c); err != nil {
				return err
			}
			if err := store.Update(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Updated course %d: %s", id, c)))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func deleteCourseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), id); err != nil {
				if schedule.IsNotFound(err) {
					return fmt.Errorf("course %d does not exist", id)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Deleted course %d", id)))
			return nil
		},
	}
}

func importCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|file.json>",
		Short: "Import courses from a CSV or legacy JSON file",
		Long: `Import courses from a CSV file with a header row naming the columns
day, start_time, end_time, course_name and optionally id, course_code,
created_at, updated_at, or from a courses.json array using the same keys.
Days may be spelled Mon..Sun, 1-7 or 周一..周日.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := schedule.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Import(cmd.Context(), courses)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Imported %d courses", n)))
			return nil
		},
	}
}

func exportCoursesCmd() *cobra.Command {
	var legacyDays bool
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export all courses to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			courses, err := store.All(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := schedule.WriteCSV(f, courses, legacyDays); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Exported %d courses to %s", len(courses), args[0])))
			return nil
		},
	}
	cmd.Flags().BoolVar(&legacyDays, "legacy-days", true, "write days as 周一..周日")
	return cmd
}

func searchCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find courses by code, name or day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			courses, err := store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printCourses(cmd, courses)
		},
	}
}

func currentCourseCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the schedule status now or at a given time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.ParseInLocation("2006-01-02 15:04", at, time.Local)
				if err != nil {
					return fmt.Errorf("--at wants \"YYYY-MM-DD HH:MM\": %w", err)
				}
				now = t
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			status, err := schedule.NewOracle(store).StatusAt(cmd.Context(), now)
			if err != nil {
				return err
			}
			style := cli.InfoStyle
			if status.Kind == schedule.InClass {
				style = cli.SuccessStyle
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n",
				schedule.WeekdayOf(now), schedule.Clock(now), style.Render(status.String()))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate at \"YYYY-MM-DD HH:MM\" instead of now")
	return cmd
}
