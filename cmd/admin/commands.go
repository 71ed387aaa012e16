package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/pwannenmacher/criteria-settings/internal/auth"
	"github.com/pwannenmacher/criteria-settings/internal/models"
	"github.com/pwannenmacher/criteria-settings/internal/service"
)

// cliActor is recorded as the author of imports made from the command line
var cliActor = service.Actor{Username: "admin-cli", UserAgent: "criteria-settings-admin"}

// AdminService is the subset of the admin service the commands use
type AdminService interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*models.User, string, error)
	ResetUser(ctx context.Context, username string) (string, error)
	CreateTeam(ctx context.Context, name, parent string) (*models.Team, error)
	CreateAccessLevel(ctx context.Context, name string, flags []string) (*models.AccessLevel, error)
	AddEmployee(ctx context.Context, in service.AddEmployeeInput) (*models.Employee, error)
	GrantGroupPermission(ctx context.Context, username, group, codename string) error
	ImportVersion(ctx context.Context, actor service.Actor, doc *service.VersionDocument) (*models.CriteriaVersion, error)
}

// AuditLister reads recent audit entries
type AuditLister interface {
	List(ctx context.Context, resource string, limit int) ([]models.AuditLog, error)
}

// CLI dispatches "<group> <command> [flags]" invocations
type CLI struct {
	Admin AdminService
	Audit AuditLister
	Out   io.Writer
}

type command struct {
	usage string
	// offline commands run without configuration or a database
	offline bool
	run     func(c *CLI, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"user create":         {usage: "--username NAME [--name TEXT] [--staff] [--superuser]", run: (*CLI).userCreate},
	"user reset":          {usage: "--username NAME", run: (*CLI).userReset},
	"team create":         {usage: "--name NAME [--parent NAME]", run: (*CLI).teamCreate},
	"access-level create": {usage: "--name NAME [--flags can_read_criteria_settings,...]", run: (*CLI).accessLevelCreate},
	"employee add":        {usage: "--username NAME --team NAME --access-level NAME [--role ROLE]", run: (*CLI).employeeAdd},
	"group grant":         {usage: "--username NAME --group NAME --permission CODENAME", run: (*CLI).groupGrant},
	"version import":      {usage: "--file tree.yaml", run: (*CLI).versionImport},
	"audit list":          {usage: "[--resource NAME] [--limit N]", run: (*CLI).auditList},
	"jwt-key generate":    {usage: "[--out FILE]", offline: true, run: (*CLI).jwtKeyGenerate},
}

// Run executes the command named by the first two arguments
func (c *CLI) Run(ctx context.Context, args []string) error {
	cmd, err := lookup(args)
	if err != nil {
		return err
	}
	return cmd.run(c, ctx, args[2:])
}

func lookup(args []string) (command, error) {
	if len(args) < 2 {
		return command{}, fmt.Errorf("expected <group> <command>, run \"admin help\" for usage")
	}
	name := args[0] + " " + args[1]
	cmd, ok := commands[name]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q", name)
	}
	return cmd, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admin <group> <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %s\n", name, commands[name].usage)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// required reports the first empty flag value
func required(fs *pflag.FlagSet, names ...string) error {
	for _, n := range names {
		if v, _ := fs.GetString(n); strings.TrimSpace(v) == "" {
			return fmt.Errorf("--%s is required", n)
		}
	}
	return nil
}

func (c *CLI) userCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("user create")
	username := fs.String("username", "", "login name")
	name := fs.String("name", "", "display name")
	staff := fs.Bool("staff", false, "authorize by group permissions instead of access level")
	superuser := fs.Bool("superuser", false, "grant every permission")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "username"); err != nil {
		return err
	}

	user, password, err := c.Admin.CreateUser(ctx, service.CreateUserInput{
		Username:  *username,
		Name:      *name,
		Staff:     *staff,
		Superuser: *superuser,
	})
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(c.Out, "Created user %s (id %d)\n", user.Username, user.ID)
	fmt.Fprintf(c.Out, "Initial password: %s\n", password)
	fmt.Fprintln(c.Out, "The password is shown only once and must be replaced at first login.")
	return nil
}

func (c *CLI) userReset(ctx context.Context, args []string) error {
	fs := newFlagSet("user reset")
	username := fs.String("username", "", "login name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "username"); err != nil {
		return err
	}

	password, err := c.Admin.ResetUser(ctx, *username)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.Out, "New initial password for %s: %s\n", *username, password)
	return nil
}

func (c *CLI) teamCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("team create")
	name := fs.String("name", "", "team name")
	parent := fs.String("parent", "", "name of the parent team")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "name"); err != nil {
		return err
	}

	team, err := c.Admin.CreateTeam(ctx, *name, *parent)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.Out, "Created team %s (id %d)\n", team.Name, team.ID)
	return nil
}

func (c *CLI) accessLevelCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("access-level create")
	name := fs.String("name", "", "access level name")
	flags := fs.StringSlice("flags", nil, "capability flags to grant")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "name"); err != nil {
		return err
	}

	level, err := c.Admin.CreateAccessLevel(ctx, *name, *flags)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.Out, "Created access level %s (id %d)\n", level.Name, level.ID)
	return nil
}

func (c *CLI) employeeAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("employee add")
	username := fs.String("username", "", "login name")
	team := fs.String("team", "", "team name")
	accessLevel := fs.String("access-level", "", "access level name")
	role := fs.String("role", string(models.RoleDeveloper), "role inside the team")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "username", "team", "access-level"); err != nil {
		return err
	}

	employee, err := c.Admin.AddEmployee(ctx, service.AddEmployeeInput{
		Username:    *username,
		Team:        *team,
		AccessLevel: *accessLevel,
		Role:        models.EmployeeRole(*role),
	})
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.Out, "Added %s to %s as %s (employee id %d)\n", *username, *team, employee.Role, employee.ID)
	return nil
}

func (c *CLI) groupGrant(ctx context.Context, args []string) error {
	fs := newFlagSet("group grant")
	username := fs.String("username", "", "login name of a staff user")
	group := fs.String("group", "", "group name, created when missing")
	codename := fs.String("permission", "", "permission codename, e.g. change_criteria")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "username", "group", "permission"); err != nil {
		return err
	}

	if err := c.Admin.GrantGroupPermission(ctx, *username, *group, *codename); err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.Out, "Granted %s to %s through group %s\n", *codename, *username, *group)
	return nil
}

func (c *CLI) versionImport(ctx context.Context, args []string) error {
	fs := newFlagSet("version import")
	path := fs.StringP("file", "f", "", "YAML version document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "file"); err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := service.ParseVersionDocument(f)
	if err != nil {
		return err
	}
	version, err := c.Admin.ImportVersion(ctx, cliActor, doc)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.Out, "Imported version %s with %d criteria and %d relationships\n",
		version.VersionName, len(doc.Criteria), len(doc.Relationships))
	return nil
}

func (c *CLI) auditList(ctx context.Context, args []string) error {
	fs := newFlagSet("audit list")
	resource := fs.String("resource", "", "only entries for this resource, e.g. criteria_versions")
	limit := fs.Int("limit", 50, "maximum number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logs, err := c.Audit.List(ctx, *resource, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tACTION\tRESOURCE\tDETAILS")
	for _, l := range logs {
		user := "-"
		if l.UserID != nil {
			user = fmt.Sprint(*l.UserID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.CreatedAt.Format("2006-01-02 15:04:05"), user, l.Action, l.Resource, l.Details)
	}
	return tw.Flush()
}

func (c *CLI) jwtKeyGenerate(_ context.Context, args []string) error {
	fs := newFlagSet("jwt-key generate")
	out := fs.String("out", "", "also write the PEM to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := auth.GenerateSigningKeyPEM()
	if err != nil {
		return err
	}

	fmt.Fprintln(c.Out, "Add this line to your .env file:")
	fmt.Fprintf(c.Out, "JWT_SECRET=\"%s\"\n", strings.ReplaceAll(strings.TrimSpace(string(key)), "\n", `\n`))
	if *out != "" {
		if err := os.WriteFile(*out, key, 0o600); err != nil {
			return fmt.Errorf("failed to write private key file: %w", err)
		}
		fmt.Fprintf(c.Out, "Private key saved to %s\n", *out)
	}
	return nil
}

// describe flattens field errors into a single readable line
func describe(err error) error {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(verr.Fields[f], " "))
	}
	return errors.New(strings.Join(parts, "; "))
}
