package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yigit/termsched/internal/app/migrations"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/app/slotimport"
	"github.com/yigit/termsched/internal/bootstrap"
	"github.com/yigit/termsched/internal/db"
	"github.com/yigit/termsched/internal/seed"
)

func newMigrateCmd(a *app) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requirePostgres(); err != nil {
				return err
			}
			database, err := db.NewPostgresDB(a.cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if !status {
				return bootstrap.RunMigrations(database.Pool, a.log)
			}

			migrator := migrations.NewMigrator(database.Pool, migrations.Files(), a.log)
			files, err := migrator.Status(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tFILE\tAPPLIED")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%t\n", f.Version, f.File, f.Applied)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they are applied")
	return cmd
}

func newRegenerateCmd(a *app) *cobra.Command {
	var (
		courseID   int64
		semesterID int64
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild class events of one course or of every course in a semester",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (courseID == 0) == (semesterID == 0) {
				return fmt.Errorf("exactly one of --course or --semester is required")
			}
			return a.withDeps(cmd.Context(), func(ctx context.Context, deps *bootstrap.Dependencies) error {
				ids := []int64{courseID}
				if semesterID != 0 {
					courses, err := deps.CourseService.List(ctx, models.CourseFilter{SemesterID: &semesterID})
					if err != nil {
						return err
					}
					ids = ids[:0]
					for _, c := range courses {
						ids = append(ids, c.ID)
					}
				}

				total := 0
				for _, id := range ids {
					n, err := deps.SchedulingService.RegenerateSchedule(ctx, id)
					if err != nil {
						return fmt.Errorf("course %d: %w", id, err)
					}
					total += n
					fmt.Fprintf(cmd.OutOrStdout(), "course %d: %d events\n", id, n)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d courses, %d events\n", len(ids), total)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&courseID, "course", 0, "course id")
	cmd.Flags().Int64Var(&semesterID, "semester", 0, "semester id")
	return cmd
}

func newImportSlotsCmd(a *app) *cobra.Command {
	var (
		courseID int64
		file     string
	)

	cmd := &cobra.Command{
		Use:   "import-slots",
		Short: "Update a course's weekly schedule from a CSV file and regenerate it",
		Long: `Reads a CSV with the header section,day,start,end,room.
Rows with an empty section form the course template; other rows override
the named section. Sections absent from the file keep their schedule, and
so does the template when the file has no template rows.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if courseID <= 0 || file == "" {
				return fmt.Errorf("--course and --file are required")
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			schedule, err := slotimport.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			return a.withDeps(cmd.Context(), func(ctx context.Context, deps *bootstrap.Dependencies) error {
				course, n, err := deps.CourseService.UpdateSchedule(ctx, operator, courseID, schedule.Update())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d template slots, %d section overrides, %d events\n",
					course.Code, len(schedule.Template), len(schedule.Sections), n)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&courseID, "course", 0, "course id")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file with weekly slots")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	var (
		userID int64
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for testing the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor := models.Actor{UserID: userID, Role: models.RoleType(strings.ToUpper(role))}
			if userID <= 0 || !actor.Role.Valid() {
				return fmt.Errorf("--user must be positive and --role one of STUDENT, INSTRUCTOR, ADMIN")
			}
			token, expiresAt, err := bootstrap.NewJWTService(a.cfg).GenerateToken(actor)
			if err != nil {
				return err
			}
			a.log.Debug().Time("expiresAt", expiresAt).Int64("userID", userID).Msg("Token issued")
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStudent), "STUDENT, INSTRUCTOR or ADMIN")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo semester and courses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// BuildDependencies seeds by itself when enabled in config
			a.cfg.Seed.Enabled = false
			return a.withDeps(cmd.Context(), func(ctx context.Context, deps *bootstrap.Dependencies) error {
				return seed.CreateDefaultData(ctx, deps.SemesterService, deps.CourseService, a.log)
			})
		},
	}
}
