package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE flows (
				namespace VARCHAR(255) NOT NULL,
				id VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				properties JSONB NOT NULL,
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE,
				PRIMARY KEY (namespace, id)
			);

			CREATE INDEX idx_flows_updated_at ON flows(updated_at);
			CREATE INDEX idx_flows_deleted_at ON flows(deleted_at);
		`,
		2: `
			-- Labels are queried when listing flows of a team.
			CREATE INDEX idx_flows_labels ON flows USING GIN ((properties -> 'labels'));
		`,
	}
}
