package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/matjam/slidepaper"
	"github.com/matjam/slidepaper/internal/cli/cmd"
	"github.com/matjam/slidepaper/internal/cli/cmd/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slidepaper",
	Short: "A hardware accelerated slideshow wallpaper",
	Long: `Slidepaper renders a continuously crossfading or scrolling slideshow
of images into an existing X11 window, using OpenGL for hardware
acceleration. Point it at a window id and a directory of images.`,
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}

		if v, err := c.Flags().GetBool("installconfig"); err == nil && v {
			utils.InstallDefaultConfig()
			return
		}

		if v, err := c.Flags().GetBool("version"); err == nil && v {
			babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
			green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
			log.Infof("%v version %v",
				babyBlue.Render("slidepaper"),
				green.Render(strings.Trim(slidepaper.Version, "\n\r ")))
			return
		}

		_ = c.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/slidepaper/slidepaper.toml)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().BoolP("installconfig", "i", false, "Install a default config file")
	rootCmd.PersistentFlags().Bool("show-config", false, "Dump resolved config")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print version")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")

	rootCmd.AddCommand(cmd.NewStartCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewNextCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewLoadCmd())
	rootCmd.AddCommand(cmd.NewGenManCmd(rootCmd))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("slidepaper")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/slidepaper")
		viper.AddConfigPath("/etc/xdg/slidepaper")
	}

	viper.SetDefault("wallpapers", "~/Pictures/wallpapers")
	viper.SetDefault("duration", 30.0)
	viper.SetDefault("fade", 1.0)
	viper.SetDefault("backlog", 3)
	viper.SetDefault("grid", "1x1")
	viper.SetDefault("mode", "fade")
	viper.SetDefault("scroll_speed", 0.02)
	viper.SetDefault("easing", "ease-in-out")
	viper.SetDefault("shuffle", true)
	viper.SetDefault("framerate_limit", 60)
	viper.SetDefault("window_geometry", "")
	viper.SetDefault("debug", false)

	viper.AutomaticEnv() // read environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		// Missing config is fine, defaults and flags cover everything.
		log.Debugf("no config file found: %v", err)
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}
