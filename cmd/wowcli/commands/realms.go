package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeulenG/Puhaa-WoW/auth"
)

// realms: authenticate and print the realm list without joining one.
func realmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "realms",
		Short: "Authenticate and print the realm list",
		RunE: func(cmd *cobra.Command, args []string) error {
			var realms []auth.Realm
			done := false
			client.OnRealmList(func(list []auth.Realm) {
				realms = list
				done = true
			})
			var failure error
			client.OnFailure(func(reason string) {
				failure = fmt.Errorf("login failed: %s", reason)
			})

			if err := client.Login(authHost, account, password); err != nil {
				return err
			}
			defer client.Disconnect()

			deadline := time.Now().Add(30 * time.Second)
			for !done && failure == nil {
				if time.Now().After(deadline) {
					return fmt.Errorf("timed out waiting for realm list")
				}
				client.Update()
				time.Sleep(client.IterationInterval())
			}
			if failure != nil {
				return failure
			}

			for _, r := range realms {
				status := "online"
				if !r.Online() {
					status = "offline"
				}
				fmt.Printf("%-3d %-24s %-22s %-8s %.1f\n",
					r.ID, r.Name, r.Address, status, r.Population)
			}
			return nil
		},
	}
}
