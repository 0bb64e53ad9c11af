package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/gastromatic/sqlstate/profile"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage connection profiles",
	Long: `Manage connection profiles in the configuration file.

Profiles allow you to save connection settings for multiple databases
and easily switch between them using --profile or SQLSTATE_PROFILE.

Configuration is stored in ~/.sqlstate/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Long: `Add a new profile interactively.

You will be prompted for the database type, the connection target, and
the schemas to reflect.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile.

If no name is provided, shows the default profile.
Secrets are hidden by default; use --show-secrets to reveal them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)

	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")

	rootCmd.AddCommand(configureCmd)
}

func loadProfiles() (string, *profile.File, error) {
	path, err := profile.DefaultPath()
	if err != nil {
		return "", nil, err
	}
	f, err := profile.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, f, nil
}

func runConfigureList(cmd *cobra.Command, args []string) error {
	_, f, err := loadProfiles()
	if err != nil {
		return err
	}

	if len(f.Profiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured. Run 'sqlstate configure add <name>'.")
		return nil
	}

	def, err := f.GetDefault()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := range f.Profiles {
		p := &f.Profiles[i]
		marker := " "
		if p.Name == def.Name {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s (%s) %s\n", marker, p.Name, p.Type, maskDSN(p, showSecrets))
	}
	return nil
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	path, f, err := loadProfiles()
	if err != nil {
		return err
	}
	if _, err := f.Get(name); err == nil {
		return fmt.Errorf("%w: %s", profile.ErrProfileExists, name)
	}

	p, err := promptProfile(name)
	if err != nil {
		return err
	}

	if err := f.Add(*p); err != nil {
		return err
	}
	if p.Default {
		if err := f.SetDefault(p.Name); err != nil {
			return err
		}
	}
	if err := profile.Save(path, f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved to %s\n", name, path)
	return nil
}

func promptProfile(name string) (*profile.Profile, error) {
	p := &profile.Profile{Name: name}

	typeSelect := promptui.Select{
		Label: "Database type",
		Items: []string{"postgres", "sqlite"},
	}
	_, dbType, err := typeSelect.Run()
	if err != nil {
		return nil, err
	}
	p.Type = dbType

	if dbType == "sqlite" {
		dsn, err := (&promptui.Prompt{Label: "Database file path"}).Run()
		if err != nil {
			return nil, err
		}
		p.DSN = dsn
	} else {
		if p.Host, err = (&promptui.Prompt{Label: "Host", Default: "localhost"}).Run(); err != nil {
			return nil, err
		}

		portStr, err := (&promptui.Prompt{
			Label:   "Port",
			Default: "5432",
			Validate: func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 || n > 65535 {
					return errors.New("port must be 1-65535")
				}
				return nil
			},
		}).Run()
		if err != nil {
			return nil, err
		}
		p.Port, _ = strconv.Atoi(portStr)

		if p.Database, err = (&promptui.Prompt{Label: "Database"}).Run(); err != nil {
			return nil, err
		}
		if p.Username, err = (&promptui.Prompt{Label: "Username"}).Run(); err != nil {
			return nil, err
		}
		if p.Password, err = (&promptui.Prompt{Label: "Password", Mask: '*'}).Run(); err != nil {
			return nil, err
		}
	}

	schemasStr, err := (&promptui.Prompt{
		Label:   "Schemas to reflect (name=schema, comma separated)",
		Default: defaultSchemas(dbType),
	}).Run()
	if err != nil {
		return nil, err
	}
	if p.Schemas, err = parseSchemas(schemasStr); err != nil {
		return nil, err
	}

	confirm := promptui.Prompt{Label: "Set as default profile", IsConfirm: true}
	if _, err := confirm.Run(); err == nil {
		p.Default = true
	}

	return p, nil
}

func defaultSchemas(dbType string) string {
	if dbType == "sqlite" {
		return "main=main"
	}
	return "core=public"
}

// parseSchemas parses "name=schema,name=schema" pairs.
func parseSchemas(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, schema, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid schema pair %q (want name=schema)", pair)
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(schema)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one schema is required")
	}
	return out, nil
}

func runConfigureRemove(cmd *cobra.Command, args []string) error {
	path, f, err := loadProfiles()
	if err != nil {
		return err
	}
	if err := f.Remove(args[0]); err != nil {
		return err
	}
	if err := profile.Save(path, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Profile %q removed\n", args[0])
	return nil
}

func runConfigureSetDefault(cmd *cobra.Command, args []string) error {
	path, f, err := loadProfiles()
	if err != nil {
		return err
	}
	if err := f.SetDefault(args[0]); err != nil {
		return err
	}
	if err := profile.Save(path, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to %q\n", args[0])
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	_, f, err := loadProfiles()
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	p, err := f.Get(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:     %s\n", p.Name)
	fmt.Fprintf(out, "Type:     %s\n", p.Type)
	if p.Type == "sqlite" {
		fmt.Fprintf(out, "Path:     %s\n", p.DSN)
	} else {
		fmt.Fprintf(out, "Target:   %s\n", maskDSN(p, showSecrets))
	}
	if len(p.Schemas) > 0 {
		fmt.Fprintf(out, "Schemas:  %v\n", p.Schemas)
	}
	fmt.Fprintf(out, "Default:  %v\n", p.Default)
	return nil
}

// maskDSN renders the connection target, hiding the password unless asked.
func maskDSN(p *profile.Profile, reveal bool) string {
	if p.Type == "sqlite" {
		return p.DSN
	}
	password := "****"
	if reveal {
		password = p.Password
	}
	masked := *p
	masked.Password = password
	masked.DSN = ""
	return masked.ConnString()
}
