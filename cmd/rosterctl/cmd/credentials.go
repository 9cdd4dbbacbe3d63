package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"school-roster-service/cmd/rosterctl/config"
	"school-roster-service/internal/credentials"
	"school-roster-service/internal/importer"
	"school-roster-service/internal/models"
	rostererrors "school-roster-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the credentials command
var (
	credRole     string
	credBatch    string
	credYear     int
	credCount    int
	credFromFile string
	credOutFile  string
	credRegister bool
	credInFlight int
	credTimeout  time.Duration
)

// credentialsCmd represents the credentials command
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Generate portal login credentials",
	Long: `Credentials generates portal login IDs and temporary passwords for
student, parent or teacher accounts.

Identities can be generated standalone (--count) or for every record of a
roster file (--from-file). With --register each identity is also registered
with the server, one request at a time; a failure on one record is recorded
and the rest of the batch continues.

Examples:
  # Five teacher logins to a CSV file
  rosterctl credentials --role teacher --batch 2024A --count 5 --out creds.csv

  # Student logins for an entire roster, registered with the server
  rosterctl credentials --role student --from-file roster.csv --register

  # Parent logins for the same roster, exported only
  rosterctl credentials --role parent --from-file roster.xlsx --out parents.csv`,

	PreRunE: validateCredentialsFlags,
	RunE:    runCredentials,
}

func init() {
	rootCmd.AddCommand(credentialsCmd)

	credentialsCmd.Flags().StringVarP(&credRole, "role", "r", "student", "role: student, parent or teacher")
	credentialsCmd.Flags().StringVarP(&credBatch, "batch", "b", "", "batch code embedded in the login ID")
	credentialsCmd.Flags().IntVarP(&credYear, "year", "y", 0, "joining year (default: current year)")
	credentialsCmd.Flags().IntVarP(&credCount, "count", "n", 0, "number of standalone identities to generate")
	credentialsCmd.Flags().StringVar(&credFromFile, "from-file", "", "roster file to generate one identity per record")
	credentialsCmd.Flags().StringVarP(&credOutFile, "out", "o", "", "CSV output path (default: stdout)")
	credentialsCmd.Flags().BoolVar(&credRegister, "register", false, "register each identity with the server")
	credentialsCmd.Flags().IntVar(&credInFlight, "max-in-flight", 1, "concurrent registration requests")
	credentialsCmd.Flags().DurationVar(&credTimeout, "timeout", 30*time.Second, "server request timeout")

	viper.BindPFlag("max-in-flight", credentialsCmd.Flags().Lookup("max-in-flight"))
}

func validateCredentialsFlags(cmd *cobra.Command, args []string) error {
	if credCount <= 0 && credFromFile == "" {
		return fmt.Errorf("either --count or --from-file is required")
	}
	if credCount > 0 && credFromFile != "" {
		return fmt.Errorf("--count and --from-file are mutually exclusive")
	}
	if credInFlight < 1 {
		return fmt.Errorf("--max-in-flight must be at least 1")
	}
	_, err := models.ParseRole(credRole)
	return err
}

func runCredentials(cmd *cobra.Command, args []string) error {
	role, err := models.ParseRole(credRole)
	if err != nil {
		return err
	}

	contexts, err := generationContexts(role)
	if err != nil {
		return err
	}

	var issued []credentials.IssuedCredential
	if credRegister {
		client := importer.NewClient(config.ServerURL(), credTimeout)
		issuer := credentials.NewIssuer(client)
		issuer.MaxInFlight = credInFlight
		issued = issuer.Issue(context.Background(), contexts)
	} else {
		for _, genCtx := range contexts {
			issued = append(issued, credentials.IssuedCredential{
				Reference: genCtx.ReferenceName,
				Role:      genCtx.Role.Label(),
				Identity:  credentials.Generate(genCtx),
			})
		}
	}

	out := os.Stdout
	if credOutFile != "" {
		f, err := os.Create(credOutFile)
		if err != nil {
			return rostererrors.InternalError("creating credentials file", err)
		}
		defer f.Close()
		out = f
	}
	if err := credentials.WriteCSV(out, issued); err != nil {
		return rostererrors.InternalError("writing credentials CSV", err)
	}

	failed := 0
	for _, cred := range issued {
		if cred.Err != "" {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d registration(s) failed; see the status column\n", failed, len(issued))
	}
	return nil
}

// generationContexts builds the inputs either standalone or from a roster.
func generationContexts(role models.Role) ([]models.GenerationContext, error) {
	if credFromFile == "" {
		contexts := make([]models.GenerationContext, credCount)
		for i := range contexts {
			contexts[i] = models.GenerationContext{
				Role:        role,
				BatchCode:   credBatch,
				JoiningYear: credYear,
			}
		}
		return contexts, nil
	}

	data, err := os.ReadFile(credFromFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rostererrors.FileError(rostererrors.CodeFileNotFound, credFromFile, err)
		}
		return nil, rostererrors.InternalError("reading roster file", err)
	}

	orchestrator := importer.NewOrchestrator(nil)
	outcome, err := orchestrator.Validate(credFromFile, data)
	if err != nil {
		return nil, err
	}
	return credentials.ContextsForRecords(role, outcome.Accepted), nil
}
