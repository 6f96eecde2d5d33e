package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"autoform/internal/schema"
)

// fieldFlags holds the field attributes accepted by add and set. Only flags
// given on the command line are applied.
type fieldFlags struct {
	label       string
	typ         string
	required    bool
	description string
	placeholder string
	options     []string
}

func (ff *fieldFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ff.label, "label", "", "Question label")
	f.StringVar(&ff.typ, "type", "", "Field type (text, email, phone, number, select, checkbox, radio, date, time, file, textarea, url)")
	f.BoolVar(&ff.required, "required", false, "Require an answer")
	f.StringVar(&ff.description, "description", "", "Help text under the question")
	f.StringVar(&ff.placeholder, "placeholder", "", "Placeholder hint")
	f.StringArrayVar(&ff.options, "option", nil, "Choice option, repeat for each option")
}

func (ff *fieldFlags) apply(cmd *cobra.Command, f *schema.Field) {
	flags := cmd.Flags()
	if flags.Changed("label") {
		f.Label = ff.label
	}
	if flags.Changed("type") {
		f.Type = schema.FieldType(ff.typ)
	}
	if flags.Changed("required") {
		f.Required = ff.required
	}
	if flags.Changed("description") {
		d := ff.description
		f.Description = &d
	}
	if flags.Changed("placeholder") {
		p := ff.placeholder
		f.Placeholder = &p
	}
	if flags.Changed("option") {
		f.Options = append([]string(nil), ff.options...)
	}
}

var (
	addFlags fieldFlags
	setFlags fieldFlags
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Edit the fields of a schema file in place",
	Long: `Adds, removes, moves and changes fields of a schema file. The file is
cleaned on read and written back in its own format, so every edit leaves a
schema that fits the Google Forms limits. Positions are 1-based, as in
preview.`,
}

var fieldAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Append a field",
	Example: `  autoform field add signup.yaml --label "T-shirt size" --type select \
    --option S --option M --option L --required`,
	Args: cobra.ExactArgs(1),
	RunE: runFieldAdd,
}

var fieldRmCmd = &cobra.Command{
	Use:   "rm [file] [field-id]",
	Short: "Remove a field",
	Args:  cobra.ExactArgs(2),
	RunE:  runFieldRm,
}

var fieldMvCmd = &cobra.Command{
	Use:   "mv [file] [from] [to]",
	Short: "Move the field at one position to another",
	Args:  cobra.ExactArgs(3),
	RunE:  runFieldMv,
}

var fieldSetCmd = &cobra.Command{
	Use:   "set [file] [field-id]",
	Short: "Change attributes of a field",
	Args:  cobra.ExactArgs(2),
	RunE:  runFieldSet,
}

func init() {
	addFlags.register(fieldAddCmd)
	_ = fieldAddCmd.MarkFlagRequired("label")
	setFlags.register(fieldSetCmd)
	fieldCmd.AddCommand(fieldAddCmd, fieldRmCmd, fieldMvCmd, fieldSetCmd)
}

// editSchemaFile loads path, applies edit and writes the schema back. edit
// returns the line printed on success.
func editSchemaFile(cmd *cobra.Command, path string, edit func(*schema.FormSchema) (string, error)) error {
	if path == "-" {
		return fmt.Errorf("field edits need a schema file, not stdin")
	}
	s, err := readSchema(path)
	if err != nil {
		return err
	}
	msg, err := edit(s)
	if err != nil {
		return err
	}
	if err := writeSchema(cmd.OutOrStdout(), path, s); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runFieldAdd(cmd *cobra.Command, args []string) error {
	return editSchemaFile(cmd, args[0], func(s *schema.FormSchema) (string, error) {
		var f schema.Field
		addFlags.apply(cmd, &f)
		added, err := s.AddField(f)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %s at position %d", added.ID, len(s.Fields)), nil
	})
}

func runFieldRm(cmd *cobra.Command, args []string) error {
	id := args[1]
	return editSchemaFile(cmd, args[0], func(s *schema.FormSchema) (string, error) {
		if err := s.RemoveField(id); err != nil {
			return "", err
		}
		return "Removed " + id, nil
	})
}

func runFieldMv(cmd *cobra.Command, args []string) error {
	from, err := position(args[1])
	if err != nil {
		return err
	}
	to, err := position(args[2])
	if err != nil {
		return err
	}
	return editSchemaFile(cmd, args[0], func(s *schema.FormSchema) (string, error) {
		if err := s.MoveField(from-1, to-1); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved %s to position %d", s.Fields[to-1].ID, to), nil
	})
}

func runFieldSet(cmd *cobra.Command, args []string) error {
	id := args[1]
	return editSchemaFile(cmd, args[0], func(s *schema.FormSchema) (string, error) {
		err := s.UpdateField(id, func(f *schema.Field) {
			setFlags.apply(cmd, f)
		})
		if err != nil {
			return "", err
		}
		return "Updated " + id, nil
	})
}

func position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("position %q is not a number", arg)
	}
	return n, nil
}
