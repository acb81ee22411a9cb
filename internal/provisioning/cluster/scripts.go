package cluster

import (
	"bytes"
	"fmt"
	"text/template"
)

// Shell scripts pushed to the nodes over SSH. Rendered per node and
// executed as the administrative user; any non-zero exit aborts the
// stage. Quoting is kept minimal: generated passwords are alphanumeric.

const primaryScriptTemplate = `#!/bin/bash
set -euo pipefail

PGV={{ .Version }}
CONF=/etc/postgresql/$PGV/main/postgresql.conf
HBA=/etc/postgresql/$PGV/main/pg_hba.conf

systemctl start postgresql@$PGV-main

sudo -u postgres psql -v ON_ERROR_STOP=1 <<SQL
DO \$\$
BEGIN
  IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = '{{ .ReplicationUser }}') THEN
    CREATE ROLE {{ .ReplicationUser }} WITH REPLICATION LOGIN PASSWORD '{{ .ReplicationPassword }}';
  END IF;
  IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = '{{ .AdminUser }}') THEN
    CREATE ROLE {{ .AdminUser }} WITH SUPERUSER LOGIN PASSWORD '{{ .AdminPassword }}';
  END IF;
END
\$\$;
SELECT pg_create_physical_replication_slot('{{ .SlotName }}')
  WHERE NOT EXISTS (SELECT FROM pg_replication_slots WHERE slot_name = '{{ .SlotName }}');
SQL

sudo -u postgres psql -v ON_ERROR_STOP=1 -tc "SELECT 1 FROM pg_database WHERE datname = '{{ .Database }}'" | grep -q 1 ||
  sudo -u postgres createdb -O {{ .AdminUser }} {{ .Database }}

cat >> "$CONF" <<EOF
listen_addresses = '*'
wal_level = replica
wal_log_hints = on
max_wal_senders = 5
max_replication_slots = 5
synchronous_commit = on
synchronous_standby_names = '{{ .StandbyName }}'
EOF

grep -q '{{ .ReplicationUser }}' "$HBA" || cat >> "$HBA" <<EOF
host replication {{ .ReplicationUser }} {{ .SubnetCIDR }} scram-sha-256
host all {{ .AdminUser }} {{ .SubnetCIDR }} scram-sha-256
EOF

systemctl restart postgresql@$PGV-main
`

const standbyScriptTemplate = `#!/bin/bash
set -euo pipefail

PGV={{ .Version }}
PGDATA=/var/lib/postgresql/$PGV/main

systemctl stop postgresql@$PGV-main || true
rm -rf "$PGDATA"

sudo -u postgres PGPASSWORD='{{ .ReplicationPassword }}' pg_basebackup \
  -h {{ .PrimaryIP }} -p {{ .Port }} -U {{ .ReplicationUser }} \
  -D "$PGDATA" -R -X stream -S {{ .SlotName }} -c fast

echo "primary_conninfo = 'host={{ .PrimaryIP }} port={{ .Port }} user={{ .ReplicationUser }} password={{ .ReplicationPassword }} application_name={{ .StandbyName }}'" \
  | sudo -u postgres tee -a "$PGDATA/postgresql.auto.conf" > /dev/null

systemctl start postgresql@$PGV-main
`

type scriptParams struct {
	Version             string
	Database            string
	AdminUser           string
	AdminPassword       string
	ReplicationUser     string
	ReplicationPassword string
	SlotName            string
	StandbyName         string
	SubnetCIDR          string
	PrimaryIP           string
	Port                int
}

func renderScript(name, text string, params scriptParams) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s script: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("render %s script: %w", name, err)
	}
	return buf.String(), nil
}

// remoteCommand wraps a rendered script for one-shot execution on the
// node without leaving credentials in a file.
func remoteCommand(script string) string {
	return "bash -s <<'PGHA_SCRIPT_EOF'\n" + script + "\nPGHA_SCRIPT_EOF"
}
