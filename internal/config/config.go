package config

type Config struct {
	ServerConfig
	GoogleConfig
	LocalConfig
	SMTPConfig
}

type ServerConfig struct {
	Addr        string `envconfig:"HTTP_ADDR" default:":8080"`
	DesignerKey string `envconfig:"DESIGNER_KEY" required:"false" masked:"true"`
}

type GoogleConfig struct {
	// CredentialsFile wins over CredentialsJSON when both are set; the JSON
	// variant exists for deployments that inject the service account as a
	// secret instead of a mounted file.
	CredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE" default:"credentials.json"`
	CredentialsJSON string `envconfig:"GOOGLE_CREDENTIALS_JSON" required:"false" masked:"true"`
	SheetName       string `envconfig:"SHEET_NAME" default:"Sistema_Orcamentos"`
	DriveFolderName string `envconfig:"DRIVE_FOLDER_NAME" default:"Projetos_Melissa_Arquivos"`
	PauseMs         int    `envconfig:"SHEET_PAUSE_MS" required:"false"`
}

type LocalConfig struct {
	// DataDir holds the fallback JSON tables and the local uploads directory.
	DataDir string `envconfig:"LOCAL_DATA_DIR" default:"."`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port     string `envconfig:"SMTP_PORT" default:"587"`
	Sender   string `envconfig:"EMAIL_SENDER" required:"false"`
	Password string `envconfig:"EMAIL_PASSWORD" required:"false" masked:"true"`
}
