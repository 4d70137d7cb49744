package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Theme         string `json:"theme"`
	ImpostorCount int    `json:"impostor_count"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Name string `json:"name"`
}

// PassTurnRequest is the request body for passing the turn.
// ExpectedIndex guards against a double pass from a stale client.
type PassTurnRequest struct {
	ExpectedIndex *int `json:"expected_index,omitempty"`
}

// DecisionRequest is the request body for the end-of-round decision
type DecisionRequest struct {
	Decision string `json:"decision"`
}

// VoteRequest is the request body for casting a ballot.
// A null or missing candidate is a skip.
type VoteRequest struct {
	VoterID     string  `json:"voter_id"`
	CandidateID *string `json:"candidate_id"`
}
