package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/addonsmith/behavior"
	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/config"
	"github.com/c360studio/addonsmith/project"
	"github.com/c360studio/addonsmith/storage"
)

// componentInfo is the printable form of a component definition.
type componentInfo struct {
	Name        string         `yaml:"name"`
	Key         string         `yaml:"key"`
	Description string         `yaml:"description,omitempty"`
	Properties  []propertyInfo `yaml:"properties"`
}

type propertyInfo struct {
	Name        string    `yaml:"name"`
	Type        string    `yaml:"type"`
	Range       []float64 `yaml:"range,omitempty,flow"`
	Arity       int       `yaml:"arity,omitempty"`
	Required    bool      `yaml:"required,omitempty"`
	Default     any       `yaml:"default,omitempty"`
	Description string    `yaml:"description,omitempty"`
}

func describeComponent(namespace string, def component.Definition) componentInfo {
	info := componentInfo{Name: def.Name(), Key: namespace + ":" + def.Name()}
	if d, ok := def.(interface{ Description() string }); ok {
		info.Description = d.Description()
	}
	for _, d := range def.Schema().Descriptors() {
		p := propertyInfo{
			Name:        d.Name,
			Type:        d.Type.String(),
			Arity:       d.Arity,
			Required:    d.Required(),
			Description: d.Description,
		}
		if d.Range != nil {
			p.Range = []float64{d.Range.Min, d.Range.Max}
		}
		if d.HasDefault {
			p.Default = d.DefaultVal
		}
		info.Properties = append(info.Properties, p)
	}
	return info
}

// formatRange renders a range the way schema errors do, "[0, 15]" or "[1, ∞)".
func formatRange(lo, hi float64) string {
	if math.IsInf(hi, 1) {
		return fmt.Sprintf("[%g, ∞)", lo)
	}
	return fmt.Sprintf("[%g, %g]", lo, hi)
}

func (a *App) listComponents(w io.Writer) {
	namespace := a.registry.Namespace()
	for _, name := range a.registry.Names() {
		def, err := a.registry.Get(name)
		if err != nil {
			continue
		}
		var props []string
		for _, d := range def.Schema().Descriptors() {
			s := d.Name + " " + d.Type.String()
			if d.Range != nil {
				s += " " + formatRange(d.Range.Min, d.Range.Max)
			}
			if d.Required() {
				s += " (required)"
			}
			props = append(props, s)
		}
		fmt.Fprintf(w, "%-28s %s\n", namespace+":"+name, strings.Join(props, ", "))
	}
}

func componentsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "components",
		Short: "List registered virtual components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			app.listComponents(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Show a component's property schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			name := app.registry.ComponentName(args[0])
			def, err := app.registry.Get(name)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(describeComponent(app.registry.Namespace(), def))
		},
	})

	return cmd
}

func templateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate behavior files from templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			for _, name := range app.templates.Names() {
				t, _ := app.templates.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-8s %s\n", name, t.Kind().Short(), t.Description())
			}
			return nil
		},
	})

	var out string
	newCmd := &cobra.Command{
		Use:   "new NAME IDENTIFIER",
		Short: "Create a behavior file from a template",
		Long: `Create a behavior file from template NAME with the given identifier,
for example "template new car mypack:jeep -o BP/entities/jeep.json".
Without --out the document is written to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			data, err := app.newFromTemplate(args[0], args[1])
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return app.writeFile(out, data)
		},
	}
	newCmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	cmd.AddCommand(newCmd)

	return cmd
}

// newFromTemplate renders template name for identifier.
func (a *App) newFromTemplate(name, identifier string) ([]byte, error) {
	if !strings.Contains(identifier, ":") {
		return nil, fmt.Errorf("identifier %q must be namespaced, e.g. mypack:%s", identifier, identifier)
	}
	t, ok := a.templates.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(a.templates.Names(), ", "))
	}
	return behavior.Encode(t.Build(identifier), a.cfg.Build.Indent)
}

func (a *App) writeFile(path string, data []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	store := storage.NewStore(filepath.Dir(abs), a.cfg.Build.Indent)
	if store.Exists(filepath.Base(abs)) {
		return fmt.Errorf("%s already exists", path)
	}
	if err := store.WriteRaw(filepath.Base(abs), data); err != nil {
		return err
	}
	a.logger.Info("Wrote file", "path", abs)
	return nil
}

func entityCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Edit entity behavior files",
	}

	var (
		ints      []string
		enums     []string
		namespace string
	)
	propertyCmd := &cobra.Command{
		Use:   "property FILE",
		Short: "Add entity properties to a behavior file",
		Long: `Add entity properties to a behavior file. Each flag takes NAME=v1,v2,...

--int creates an int property ranging over the value indexes.
--enum creates an enum property over the values.

Property names are prefixed with --namespace, which defaults to the
namespace of the entity's identifier.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			flagged := make([]propertyFlag, 0, len(ints)+len(enums))
			for _, s := range ints {
				p, err := parsePropertyFlag("int", s)
				if err != nil {
					return err
				}
				flagged = append(flagged, p)
			}
			for _, s := range enums {
				p, err := parsePropertyFlag("enum", s)
				if err != nil {
					return err
				}
				flagged = append(flagged, p)
			}
			return app.addProperties(args[0], namespace, flagged)
		},
	}
	propertyCmd.Flags().StringArrayVar(&ints, "int", nil, "Int property NAME=v1,v2,...")
	propertyCmd.Flags().StringArrayVar(&enums, "enum", nil, "Enum property NAME=v1,v2,...")
	propertyCmd.Flags().StringVar(&namespace, "namespace", "", "Property namespace (default: identifier namespace)")
	cmd.AddCommand(propertyCmd)

	return cmd
}

// propertyFlag is one parsed --int or --enum flag.
type propertyFlag struct {
	kind  string
	name  string
	items []string
}

func parsePropertyFlag(kind, s string) (propertyFlag, error) {
	name, values, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return propertyFlag{}, fmt.Errorf("invalid %s property %q, want NAME=v1,v2", kind, s)
	}
	var items []string
	for _, v := range strings.Split(values, ",") {
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	return propertyFlag{kind: kind, name: name, items: items}, nil
}

// addProperties writes entity properties into the behavior file at path.
func (a *App) addProperties(path, namespace string, props []propertyFlag) error {
	if len(props) == 0 {
		return errors.New("no properties given, use --int or --enum")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	store := storage.NewStore(filepath.Dir(abs), a.cfg.Build.Indent)
	file := filepath.Base(abs)

	data, err := store.Load(file)
	if err != nil {
		return err
	}
	doc, err := behavior.New(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if namespace == "" {
		id, err := doc.Identifier()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		namespace, _, _ = strings.Cut(id, ":")
	}

	for _, pf := range props {
		p, err := behavior.NewEntityProperty(pf.kind, namespace, pf.name, pf.items)
		if err != nil {
			return err
		}
		if err := doc.AddProperty(p); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		a.logger.Info("Added entity property", "path", path, "property", p.Name(), "type", pf.kind)
	}

	_, err = store.Save(file, doc.Data())
	return err
}

func projectCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage add-on projects",
	}

	var path string
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Scaffold a resource pack and behavior pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(flags)
			if err != nil {
				return err
			}
			if path == "" {
				path = app.cfg.Project.ProjectsPath
			}
			p, err := project.Create(path, args[0], project.Options{
				MinEngineVersion: app.cfg.Project.MinEngineVersion,
				Indent:           app.cfg.Build.Indent,
			})
			if err != nil {
				return err
			}
			app.logger.Info("Created project",
				"name", p.Name,
				"resource_pack", p.ResourcePack,
				"behavior_pack", p.BehaviorPack)
			fmt.Fprintln(cmd.OutOrStdout(), p.Dir)
			return nil
		},
	}
	createCmd.Flags().StringVar(&path, "path", "", "Parent directory (default: project.projects_path)")
	cmd.AddCommand(createCmd)

	return cmd
}

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialise configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the user config file with defaults if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(newLogger(flags.logLevel)).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(newLogger(flags.logLevel)).Load(flags.configPath)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	})

	return cmd
}
