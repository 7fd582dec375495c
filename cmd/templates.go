package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the job templates offered by the API",
	Run: func(_ *cobra.Command, _ []string) {
		listTemplates()
	},
}

var templateCmd = &cobra.Command{
	Use:   "template <key>",
	Short: "Show a job template with its level insights",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showTemplate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(templateCmd)

	templatesCmd.Flags().String("placeholder", "", "label of the empty template option")
	viper.BindPFlag("templates.placeholder", templatesCmd.Flags().Lookup("placeholder"))

	templateCmd.Flags().StringP("level", "l", "", "level to show insights for (default is the first level of the template)")
	templateCmd.Flags().Bool("refresh", false, "fetch the template from the API even if it is cached")
}

func listTemplates() {
	ctx := context.Background()
	e := newEnv(ctx)

	if err := e.session.LoadCatalog(ctx); err != nil {
		e.logger.Fatal("loading templates", zap.Error(err))
	}

	e.out.Catalog(e.session.Templates())
}

func showTemplate(cmd *cobra.Command, key string) {
	ctx := context.Background()
	e := newEnv(ctx)

	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		if _, err := e.loader.Refresh(ctx, key); err != nil {
			e.logger.Fatal("refreshing template", zap.String("template", key), zap.Error(err))
		}
	}

	view, err := e.session.SelectTemplate(ctx, key)
	if err != nil {
		e.logger.Fatal("getting template", zap.String("template", key), zap.Error(err))
	}

	if level, _ := cmd.Flags().GetString("level"); level != "" {
		view = e.session.SelectLevel(level)
		if view.Visible && view.ActiveLevel != level {
			e.logger.Warn("level is not defined by the template, showing the first one",
				zap.String("level", level),
				zap.String("shown", view.ActiveLevel),
			)
		}
	}

	e.out.Template(e.session.Template(), view)
}
