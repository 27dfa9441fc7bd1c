package config

import (
	"fmt"
	"os"
)

// cloudSQLURL builds a PostgreSQL connection string for a Cloud SQL instance
// mounted by Cloud Run at /cloudsql/INSTANCE_CONNECTION_NAME. It returns ""
// when INSTANCE_CONNECTION_NAME is unset.
func cloudSQLURL() (string, error) {
	instance := os.Getenv("INSTANCE_CONNECTION_NAME")
	if instance == "" {
		return "", nil
	}

	user := os.Getenv("DB_USER")
	name := os.Getenv("DB_NAME")
	if user == "" || name == "" {
		return "", fmt.Errorf("DB_USER and DB_NAME must be set when using INSTANCE_CONNECTION_NAME")
	}

	socketPath := "/cloudsql/" + instance
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			socketPath, user, password, name), nil
	}
	// IAM authentication, no password
	return fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable", socketPath, user, name), nil
}
