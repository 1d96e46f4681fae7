package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unidocs-backend/services/docgen"

	"github.com/spf13/cobra"
)

var (
	generateType     *string
	generateLanguage *string
	generateInput    *string
)

func init() {
	generateType = generateCmd.Flags().String("type", "transcript", "The document type to generate.")
	generateLanguage = generateCmd.Flags().String("lang", "ru", "The target language of the document.")
	generateInput = generateCmd.Flags().String("input", "student.json", "Path to the student/transcript input payload.")
	rootCmd.AddCommand(generateCmd)
}

type generateInputFile struct {
	StudentId   string                 `json:"student_id"`
	StudentInfo map[string]any         `json:"student_info"`
	Rows        []docgen.TranscriptRow `json:"rows"`
}

var generateCmd = &cobra.Command{
	Use:   "generate [--type <transcript|reference>] [--lang <code>] [--input <path>]",
	Short: "Generates a document pdf from the portal's extracted rendering code and uploads it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		raw, err := os.ReadFile(*generateInput)
		if err != nil {
			return err
		}
		var input generateInputFile
		err = json.Unmarshal(raw, &input)
		if err != nil {
			return fmt.Errorf("parse %s: %w", *generateInput, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*120)
		defer cancel()

		link, err := service.Delivery().IssueLink(ctx, input.StudentId)
		if err != nil {
			return err
		}
		err = service.Delivery().Trigger(ctx, link.Id)
		if err != nil {
			slog.Warn("generation trigger was not acknowledged", "err", err)
		}

		t1 := time.Now()
		doc, err := service.Generate(ctx, docgen.GenerationRequest{
			Type:        docgen.DocumentType(*generateType),
			Language:    *generateLanguage,
			StudentId:   input.StudentId,
			StudentInfo: input.StudentInfo,
			Rows:        input.Rows,
			LinkId:      link.Id,
			QrUrl:       link.Url,
		})
		if err != nil {
			return err
		}
		slog.Info(
			"document generated",
			"filename", doc.Filename,
			"bytes", len(doc.Bytes),
			"seconds", time.Since(t1).Seconds(),
		)

		url, err := service.Deliver(ctx, doc, link, input.StudentId)
		if err != nil {
			return err
		}

		fmt.Println(url)
		return nil
	},
}
