package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"genomecorrupt/internal/store/sqlite"
	"genomecorrupt/internal/tui"
)

var inspectDB string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Browse rows stored by a previous sqlite run",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := inspectDB
		if path == "" && cfg.Store.SQLite != nil {
			path = cfg.Store.SQLite.Path
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()
		n, err := s.Count(cmd.Context())
		if err != nil {
			return err
		}
		logger.Debug("inspecting dataset", zap.String("path", s.Path()), zap.Int("rows", n))
		_, err = tea.NewProgram(tui.New(s, fmt.Sprintf("%d rows in %s", n, s.Path()))).Run()
		return err
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDB, "db", "", "SQLite dataset path (defaults to store.sqlite.path)")
}
