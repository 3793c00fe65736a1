package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/w12190/message.ly/cmd/cli/config"
	"github.com/w12190/message.ly/cmd/cli/output"
	"github.com/w12190/message.ly/cmd/cli/users"
)

// ==========================
// CLI Command Init
// ==========================

// InitMessages registers the messages command group on the root command.
func InitMessages(rootCmd *cobra.Command) {
	messagesCmd := &cobra.Command{
		Use:   "messages",
		Short: "Send and read direct messages",
	}

	messagesCmd.AddCommand(
		sendCmd(),
		getCmd(),
		readCmd(),
		inboxCmd(),
		outboxCmd(),
	)

	rootCmd.AddCommand(messagesCmd)
}

// authedRequest performs an HTTP request with the saved token and decodes the
// JSON body into out on a 2xx response.
func authedRequest(method, path string, payload, out interface{}) error {
	token, err := users.ReadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", string(b))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// threadContact is the from_user/to_user shape in listing responses.
type threadContact struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// ==========================
// SEND
// ==========================
func sendCmd() *cobra.Command {
	var to string
	var body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Message struct {
					ID int `json:"id"`
				} `json:"message"`
			}
			payload := map[string]string{"to_username": to, "body": body}
			if err := authedRequest("POST", "/messages", payload, &out); err != nil {
				return err
			}

			fmt.Printf("Message %d sent to %s\n", out.Message.ID, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient username")
	cmd.Flags().StringVar(&body, "body", "", "message body")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("body")
	return cmd
}

// ==========================
// GET
// ==========================
func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a message by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Message json.RawMessage `json:"message"`
			}
			if err := authedRequest("GET", "/messages/"+args[0], nil, &out); err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, out.Message, "", "  "); err != nil {
				return err
			}
			fmt.Println(pretty.String())
			return nil
		},
	}
}

// ==========================
// READ (mark read)
// ==========================
func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a message as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Message struct {
					ID     int    `json:"id"`
					ReadAt string `json:"read_at"`
				} `json:"message"`
			}
			if err := authedRequest("POST", "/messages/"+args[0]+"/read", nil, &out); err != nil {
				return err
			}

			fmt.Printf("Message %d read at %s\n", out.Message.ID, out.Message.ReadAt)
			return nil
		},
	}
}

// ==========================
// INBOX
// ==========================
func inboxCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List messages sent to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Messages []struct {
					ID       int           `json:"id"`
					Body     string        `json:"body"`
					SentAt   string        `json:"sent_at"`
					ReadAt   *string       `json:"read_at"`
					FromUser threadContact `json:"from_user"`
				} `json:"messages"`
			}
			if err := authedRequest("GET", "/users/"+username+"/to", nil, &out); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(out.Messages))
			for _, m := range out.Messages {
				read := "unread"
				if m.ReadAt != nil {
					read = *m.ReadAt
				}
				rows = append(rows, []interface{}{m.ID, m.FromUser.Username, m.Body, m.SentAt, read})
			}
			output.RenderTable([]string{"ID", "From", "Body", "Sent", "Read"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "your username")
	cmd.MarkFlagRequired("user")
	return cmd
}

// ==========================
// OUTBOX
// ==========================
func outboxCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "List messages you sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Messages []struct {
					ID     int           `json:"id"`
					Body   string        `json:"body"`
					SentAt string        `json:"sent_at"`
					ReadAt *string       `json:"read_at"`
					ToUser threadContact `json:"to_user"`
				} `json:"messages"`
			}
			if err := authedRequest("GET", "/users/"+username+"/from", nil, &out); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(out.Messages))
			for _, m := range out.Messages {
				read := "unread"
				if m.ReadAt != nil {
					read = *m.ReadAt
				}
				rows = append(rows, []interface{}{m.ID, m.ToUser.Username, m.Body, m.SentAt, read})
			}
			output.RenderTable([]string{"ID", "To", "Body", "Sent", "Read"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "your username")
	cmd.MarkFlagRequired("user")
	return cmd
}
