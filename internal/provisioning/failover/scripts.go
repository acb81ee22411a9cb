package failover

import (
	"bytes"
	"fmt"
	"text/template"
)

// rejoinScriptTemplate turns the demoted primary into a standby of the
// freshly promoted node. pg_rewind backs the data directory off the
// diverged timeline instead of a full base backup; the cluster was
// bootstrapped with wal_log_hints on to make that possible.
const rejoinScriptTemplate = `#!/bin/bash
set -euo pipefail

PGV={{ .Version }}
PGDATA=/var/lib/postgresql/$PGV/main

systemctl stop postgresql@$PGV-main || true

sudo -u postgres PGPASSWORD='{{ .ReplicationPassword }}' pg_rewind \
  --target-pgdata="$PGDATA" \
  --source-server="host={{ .NewPrimaryIP }} port={{ .Port }} user={{ .ReplicationUser }} dbname=postgres"

echo "primary_conninfo = 'host={{ .NewPrimaryIP }} port={{ .Port }} user={{ .ReplicationUser }} password={{ .ReplicationPassword }} application_name={{ .SelfName }}'" \
  | sudo -u postgres tee -a "$PGDATA/postgresql.auto.conf" > /dev/null
sudo -u postgres touch "$PGDATA/standby.signal"

systemctl start postgresql@$PGV-main
`

type rejoinParams struct {
	Version             string
	NewPrimaryIP        string
	Port                int
	ReplicationUser     string
	ReplicationPassword string
	SelfName            string
}

func renderRejoinScript(params rejoinParams) (string, error) {
	tmpl, err := template.New("rejoin").Parse(rejoinScriptTemplate)
	if err != nil {
		return "", fmt.Errorf("parse rejoin script: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("render rejoin script: %w", err)
	}
	return buf.String(), nil
}

func stopCommand(version string) string {
	return fmt.Sprintf("systemctl stop postgresql@%s-main", version)
}

// retargetCommand points the promoted primary's synchronous commit at
// the named standby, or detaches it entirely when standbyName is empty
// so a lone survivor can keep accepting writes.
func retargetCommand(standbyName string) string {
	return fmt.Sprintf(
		`sudo -u postgres psql -v ON_ERROR_STOP=1 -c "ALTER SYSTEM SET synchronous_standby_names = '%s'" -c "SELECT pg_reload_conf()"`,
		standbyName)
}

func remoteCommand(script string) string {
	return "bash -s <<'PGHA_SCRIPT_EOF'\n" + script + "\nPGHA_SCRIPT_EOF"
}
