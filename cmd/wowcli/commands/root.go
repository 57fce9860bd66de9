package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	wow "github.com/MeulenG/Puhaa-WoW"
)

var (
	authHost string
	authPort uint16
	account  string
	password string
	realm    string
	verbose  bool

	client *wow.Client
)

func Execute() error {
	root := &cobra.Command{
		Use:   "wowcli",
		Short: "Command-line 3.3.5a protocol client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			} else {
				log.SetLevel(logrus.WarnLevel)
			}

			options := wow.NewOptions()
			options.AuthPort = authPort
			options.RealmName = realm
			options.Logger = log

			var err error
			client, err = wow.New(options)
			return err
		},
	}

	root.PersistentFlags().StringVar(&authHost, "host", "127.0.0.1", "authentication server host")
	root.PersistentFlags().Uint16Var(&authPort, "port", 3724, "authentication server port")
	root.PersistentFlags().StringVarP(&account, "account", "a", "", "account name")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "account password")
	root.PersistentFlags().StringVar(&realm, "realm", "", "realm name (default first joinable)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	_ = root.MarkPersistentFlagRequired("account")
	_ = root.MarkPersistentFlagRequired("password")

	root.AddCommand(realmsCmd(), loginCmd())
	return root.Execute()
}
