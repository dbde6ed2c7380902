package config

import "strings"

// Postgres connection variables. Names are case-sensitive and match the
// variables deployments of the loader already export.
const (
	EnvPGHost     = "PGHost"
	EnvPGPort     = "PGPort"
	EnvPGDBName   = "PGDBName"
	EnvPGUser     = "PGUser"
	EnvPGPassword = "PGPW"
	EnvPGSSLMode  = "PGSSLMODE"
)

// MissingEnvError lists the PG* variables that must be set.
type MissingEnvError struct {
	Missing []string
}

func (e *MissingEnvError) Error() string {
	return "missing DB environment variables: " + strings.Join(e.Missing, ", ")
}

// PostgresDSNFromEnv assembles a key=value connection string from PGHost,
// PGPort, PGDBName, PGUser and PGPW (all required) and PGSSLMODE (optional).
//
// Values are quoted when needed so passwords with spaces or quotes survive.
func PostgresDSNFromEnv(getenv func(string) string) (string, error) {
	required := []struct{ env, key string }{
		{EnvPGHost, "host"},
		{EnvPGPort, "port"},
		{EnvPGDBName, "dbname"},
		{EnvPGUser, "user"},
		{EnvPGPassword, "password"},
	}

	var (
		parts   []string
		missing []string
	)
	for _, r := range required {
		v := getenv(r.env)
		if v == "" {
			missing = append(missing, r.env)
			continue
		}
		parts = append(parts, r.key+"="+quoteConnValue(v))
	}
	if len(missing) > 0 {
		return "", &MissingEnvError{Missing: missing}
	}

	if ssl := getenv(EnvPGSSLMode); ssl != "" {
		parts = append(parts, "sslmode="+quoteConnValue(ssl))
	}
	return strings.Join(parts, " "), nil
}

// quoteConnValue applies libpq key=value quoting: values that are empty or
// contain whitespace, quotes or backslashes are single-quoted with ' and \
// backslash-escaped.
func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
