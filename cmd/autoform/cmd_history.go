package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"autoform/internal/forms"
	"autoform/internal/schema"
	"autoform/internal/store"
)

var (
	historySearch string
	historyLimit  int
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List forms created from this machine",
	Long: `Lists the forms recorded by submit, newest first. The Forms API
cannot list a user's forms, so this local record is where responder and edit
links are kept.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyForgetCmd = &cobra.Command{
	Use:   "forget [form-id...]",
	Short: "Remove forms from the local history",
	Long: `Removes forms from the local history only. The Google Form itself is
not deleted; use its edit link to delete it in Google Forms.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHistoryForget,
}

func init() {
	historyCmd.Flags().StringVarP(&historySearch, "search", "s", "", "Only forms whose title or description contains this text")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum forms to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print as JSON")
	historyCmd.AddCommand(historyForgetCmd)
}

func openHistory() (*store.FormStore, error) {
	return store.NewFormStore(cfg.Forms.HistoryPath)
}

// recordCreated adds a created form to the history. Failures are logged
// only; the form exists either way. h may be nil.
func recordCreated(h *store.FormStore, s *schema.FormSchema, created *forms.CreatedForm) {
	if h == nil {
		return
	}
	err := h.Record(store.FormRecord{
		FormID:       created.FormID,
		Title:        s.Title,
		Description:  s.Description,
		ResponderURI: created.ResponderURI,
		EditURL:      created.EditURL,
		SubmissionID: created.SubmissionID,
		Fields:       len(s.Fields),
		Skipped:      len(created.Skipped),
		CreatedAt:    created.CreatedAt,
	})
	if err != nil {
		logger.Warn("failed to record created form", zap.String("form_id", created.FormID), zap.Error(err))
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	recs, err := h.List(historySearch, historyLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if historyJSON {
		if recs == nil {
			recs = []store.FormRecord{}
		}
		return printJSON(out, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No forms recorded yet.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintln(out, titleStyle.Render(r.Title))
		renderKV(out,
			"Form id", r.FormID,
			"Created", r.CreatedAt.Local().Format("2006-01-02 15:04"),
			"Fields", fmt.Sprint(r.Fields),
			"Responder URL", r.ResponderURI,
			"Edit URL", r.EditURL,
		)
	}
	return nil
}

func runHistoryForget(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	missing := 0
	for _, id := range args {
		ok, err := h.Forget(id)
		if err != nil {
			return err
		}
		if !ok {
			missing++
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("not in history: "+id))
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Forgot "+id)
	}
	if missing == len(args) {
		return fmt.Errorf("none of the given forms are in the history")
	}
	return nil
}
