package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/samvad-hq/samvad-webui-client/pkg/documents"
	"github.com/spf13/cobra"
)

func docsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate and render report documents",
	}
	cmd.AddCommand(docsGenerateCmd(st), docsRenderCmd(st), docsOutlineCmd(st))
	return cmd
}

func docsGenerateCmd(st *state) *cobra.Command {
	var (
		req       documents.GenerateRequest
		out       string
		maxTokens int
		temp      float64
	)
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Draft a report and save it as DOCX",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Prompt = strings.Join(args, " ")
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = &maxTokens
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temp
			}
			doc, err := st.clients.Documents.Generate(cmd.Context(), st.cfg.APIToken, req)
			if err != nil {
				return err
			}
			raw, err := doc.DOCXBytes()
			if err != nil {
				return err
			}
			result := map[string]any{"content": doc.Content}
			if len(raw) > 0 {
				path, err := st.saveBlob(raw, out, documents.SuggestFileName(doc, req.Prompt))
				if err != nil {
					return err
				}
				result["file"] = path
				result["bytes"] = len(raw)
			}
			if headings, err := documents.Outline(doc.HTML); err == nil && len(headings) > 0 {
				result["outline"] = headings
			}
			return st.printJSON(result)
		},
	}
	cmd.Flags().StringVar(&req.Model, "model", "", "chat model to draft with")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().Float64Var(&temp, "temperature", 0, "sampling temperature")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: download dir)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func docsRenderCmd(st *state) *cobra.Command {
	var (
		name string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "render <markdown-file>",
		Short: "Convert markdown to DOCX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			blob, err := st.clients.Documents.Render(cmd.Context(), st.cfg.APIToken, documents.RenderRequest{
				Content:  string(content),
				FileName: name,
			})
			if err != nil {
				return err
			}
			fileName := blob.FileName
			if fileName == "" {
				fileName = documents.SuggestFileName(&documents.GeneratedDocument{FileName: name}, args[0])
			}
			path, err := st.saveBlob(blob.Data, out, fileName)
			if err != nil {
				return err
			}
			return st.printSaved(path, blob.Size())
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "file name to request")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: download dir)")
	return cmd
}

func docsOutlineCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <html-file>",
		Short: "List the headings of an HTML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			headings, err := documents.Outline(string(raw))
			if err != nil {
				return err
			}
			return st.printJSON(headings)
		},
	}
}
