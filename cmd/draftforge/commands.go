package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brightpost/draftforge/internal/api"
	"github.com/brightpost/draftforge/internal/config"
	"github.com/brightpost/draftforge/internal/generator"
	"github.com/brightpost/draftforge/internal/profile"
)

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a post draft",
	Long: `Generate a post draft for the configured business profile.

Examples:
  draftforge generate --type selling
  draftforge generate --type news --tone witty
  draftforge generate --type information_advice --note "focus on VAT deadlines"
  draftforge generate --type selling --refine draft.txt --note "make it shorter"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		postType, _ := cmd.Flags().GetString("type")
		tone, _ := cmd.Flags().GetString("tone")
		note, _ := cmd.Flags().GetString("note")
		keywordsStr, _ := cmd.Flags().GetString("keywords")
		refineFile, _ := cmd.Flags().GetString("refine")
		variants, _ := cmd.Flags().GetBool("variants")
		seed, _ := cmd.Flags().GetInt64("seed")
		userID, _ := cmd.Flags().GetString("user")
		asJSON, _ := cmd.Flags().GetBool("json")

		req := generator.Request{
			UserID:       userID,
			PostType:     postType,
			ToneOverride: tone,
			Note:         note,
			Variants:     variants,
			Seed:         seed,
		}
		if keywordsStr != "" {
			for _, k := range strings.Split(keywordsStr, ",") {
				if k = strings.TrimSpace(k); k != "" {
					req.ExtraKeywords = append(req.ExtraKeywords, k)
				}
			}
		}
		if refineFile != "" {
			data, err := os.ReadFile(refineFile)
			if err != nil {
				return fmt.Errorf("reading post to refine: %w", err)
			}
			req.OriginalPost = string(data)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/drafts", req)
		if err != nil {
			return err
		}

		var result api.DraftResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printDraft(result)
		return nil
	},
}

func printDraft(result api.DraftResponse) {
	d := result.Draft

	if len(d.HeadlineOptions) > 0 {
		fmt.Println(colorize(colorBold, "Headlines"))
		for _, h := range d.HeadlineOptions {
			fmt.Printf("  - %s\n", h)
		}
		fmt.Println()
	}

	fmt.Println(d.PostText)

	if len(d.Hashtags) > 0 {
		fmt.Printf("\n%s\n", colorize(colorCyan, strings.Join(d.Hashtags, " ")))
	}
	if d.VisualPrompt != "" {
		fmt.Printf("\n%s %s\n", colorize(colorBold, "Visual:"), d.VisualPrompt)
	}
	if d.BestTimeLocal != "" {
		fmt.Printf("%s %s\n", colorize(colorBold, "Best time:"), d.BestTimeLocal)
	}

	printStatus("Draft ID", "%s", d.ID)
	printStatus("Model", "%s", result.Meta.Model)
	if result.Meta.FallbackUsed {
		printWarning("Primary model unavailable, used fallback after %d attempts", result.Meta.Attempts)
	}
	if result.Meta.NewsFallback != "" {
		printWarning("Live news unavailable: %s", result.Meta.NewsFallback)
	}
	if result.Meta.Checks != nil && !result.Meta.Checks.Passed {
		for _, issue := range result.Meta.Checks.Issues {
			printWarning("%s", issue)
		}
	}
}

func init() {
	generateCmd.Flags().String("type", "", "post type: selling, information_advice, random, news")
	generateCmd.Flags().String("tone", "", "tone override")
	generateCmd.Flags().String("note", "", "free-form brief, takes priority over the profile")
	generateCmd.Flags().String("keywords", "", "comma-separated extra keywords")
	generateCmd.Flags().String("refine", "", "file with an existing post to refine per --note")
	generateCmd.Flags().Bool("variants", false, "generate three candidates and keep the most distinct")
	generateCmd.Flags().Int64("seed", 0, "pin the randomized selections (0 = derive from clock)")
	generateCmd.Flags().String("user", "", "profile owner")
	generateCmd.Flags().Bool("json", false, "print the full response as JSON")
	generateCmd.MarkFlagRequired("type")
}

// --- feedback ---

var feedbackCmd = &cobra.Command{
	Use:   "feedback <draft-id>",
	Short: "Record thumbs feedback on a generated draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, _ := cmd.Flags().GetString("rating")
		note, _ := cmd.Flags().GetString("note")
		userID, _ := cmd.Flags().GetString("user")

		if rating != "up" && rating != "down" {
			return fmt.Errorf("--rating must be \"up\" or \"down\"")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/feedback", api.FeedbackRequest{
			UserID: userID,
			PostID: args[0],
			Rating: rating,
			Note:   note,
		})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Recorded %s feedback on %s", rating, args[0])
		return nil
	},
}

func init() {
	feedbackCmd.Flags().String("rating", "", "\"up\" or \"down\"")
	feedbackCmd.Flags().String("note", "", "optional comment")
	feedbackCmd.Flags().String("user", "", "profile owner")
	feedbackCmd.MarkFlagRequired("rating")
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the business profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a profile field",
	Long: `Set a profile field and save the profile.

Keys: business_name, industry, tone, products_services, target_audience,
usp, keywords (comma-separated), website, country`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		var p profile.Profile
		resp, err := client.get(cmd.Context(), "/v1/profile")
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
		} else if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		if err := setProfileField(&p, key, value); err != nil {
			return err
		}

		putResp, err := client.put(cmd.Context(), "/v1/profile", p)
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(putResp, &result); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func setProfileField(p *profile.Profile, key, value string) error {
	switch key {
	case "business_name":
		p.BusinessName = value
	case "industry":
		p.Industry = value
	case "tone":
		p.Tone = value
	case "products_services":
		p.ProductsServices = value
	case "target_audience":
		p.TargetAudience = value
	case "usp":
		p.USP = value
	case "keywords":
		p.Keywords = nil
		for _, k := range strings.Split(value, ",") {
			if k = strings.TrimSpace(k); k != "" {
				p.Keywords = append(p.Keywords, k)
			}
		}
	case "website":
		p.Website = value
	case "country":
		p.Country = value
	default:
		return fmt.Errorf("unknown profile key %q", key)
	}
	return nil
}

var profileAttachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach a business document (txt, md, pdf) as generation context",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/profile/documents", api.DocumentRequest{
			Filename: filepath.Base(file),
			Content:  base64.StdEncoding.EncodeToString(data),
		})
		if err != nil {
			return err
		}

		var result struct {
			ID         string `json:"id"`
			Characters int    `json:"characters"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Attached %s (%d characters extracted)", filepath.Base(file), result.Characters)
		return nil
	},
}

func init() {
	profileAttachCmd.Flags().String("file", "", "path to the document to attach")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileAttachCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update local configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
			if k.Desc != "" {
				fmt.Printf("    %s\n", colorize(colorGray, k.Desc))
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
