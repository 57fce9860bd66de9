package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	wow "github.com/MeulenG/Puhaa-WoW"
	"github.com/MeulenG/Puhaa-WoW/world"
)

var characterName string

// login: run the full sequence and stay in the world printing chat
// until interrupted.
func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in, enter the world and print the chat stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			var failure error
			client.OnFailure(func(reason string) {
				failure = fmt.Errorf("login failed: %s", reason)
			})
			client.OnStateChange(func(_, next wow.State) {
				fmt.Printf("-- %s\n", next)
			})
			client.OnRosterReceived(func(chars []world.Character) {
				guid, err := pickCharacter(chars)
				if err != nil {
					failure = err
					return
				}
				if err := client.EnterWorld(guid); err != nil {
					failure = err
				}
			})
			client.OnWorldEntered(func(pos world.Position) {
				fmt.Printf("-- entered map %d at %.1f %.1f %.1f\n",
					pos.MapID, pos.X, pos.Y, pos.Z)
			})
			client.OnChatMessage(func(msg *world.ChatMessage) {
				name := msg.SenderName
				if name == "" {
					name = fmt.Sprintf("0x%X", msg.SenderGUID)
				}
				fmt.Printf("[%s] %s: %s\n", msg.Type, name, msg.Message)
			})

			if err := client.Login(authHost, account, password); err != nil {
				return err
			}
			defer client.Disconnect()

			rosterAsked := false
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

			for failure == nil {
				select {
				case <-interrupt:
					fmt.Println("-- interrupted")
					return nil
				default:
				}
				client.Update()
				if client.State() == wow.StateReady && !rosterAsked {
					rosterAsked = true
					if err := client.RequestRoster(); err != nil {
						return err
					}
				}
				time.Sleep(client.IterationInterval())
			}
			return failure
		},
	}
	cmd.Flags().StringVarP(&characterName, "character", "c", "", "character to enter with (default first)")
	return cmd
}

func pickCharacter(chars []world.Character) (uint64, error) {
	if len(chars) == 0 {
		return 0, fmt.Errorf("account has no characters")
	}
	if characterName == "" {
		return chars[0].GUID, nil
	}
	for _, c := range chars {
		if strings.EqualFold(c.Name, characterName) {
			return c.GUID, nil
		}
	}
	return 0, fmt.Errorf("character %q not on this account", characterName)
}
