// api.go - REST API for submitting a matching round and claiming a match,
// adapted from the teacher's internal/zerocash/api.go Participant REST
// surface (handlePubKey/handleTx/RunServer). Unlike the teacher's
// participant server, this one holds no wallet or ledger state between
// requests: every /round call runs a fresh, independent round, matching
// spec.md §3's "no persistent state between rounds" (SPEC_FULL.md §6).
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"

	"matchcore/internal/matching/circuit"
	"matchcore/internal/matching/session"
	"matchcore/internal/matching/types"
)

// APIServer holds everything a /round or /claim request needs: the
// compiled circuit and its Groth16 keys, plus the ambient logger/metrics
// the rest of cmd/matchd already wires up.
type APIServer struct {
	ccs     constraint.ConstraintSystem
	pk      groth16.ProvingKey
	vk      groth16.VerifyingKey
	logger  *Logger
	metrics *MetricsCollector
	limiter *CallerRateLimiter
}

// NewAPIServer constructs an API server over an already-compiled circuit
// and its keys, the way the teacher's NewParticipant takes pre-built
// ZKP keys rather than compiling per participant.
func NewAPIServer(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey, logger *Logger, metrics *MetricsCollector, limiter *CallerRateLimiter) *APIServer {
	return &APIServer{ccs: ccs, pk: pk, vk: vk, logger: logger, metrics: metrics, limiter: limiter}
}

// RunServer starts the REST server, mirroring Participant.RunServer's
// mux-and-goroutine shape.
func (a *APIServer) RunServer(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/round", a.handleRound)
	mux.HandleFunc("/kidney-round", a.handleKidneyRound)
	mux.HandleFunc("/claim", a.handleClaim)
	go func() {
		a.logger.Info("API server listening on :%d", port)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			a.logger.Error("API server stopped: %v", err)
		}
	}()
}

// pointJSON is the wire form of a types.Point.
type pointJSON struct {
	X          string `json:"x"`
	Y          string `json:"y"`
	IsInfinity bool   `json:"is_infinity"`
}

func (p pointJSON) toPoint() (types.Point, error) {
	if p.IsInfinity {
		return types.InfinityPoint(), nil
	}
	x, ok := new(big.Int).SetString(p.X, 10)
	if !ok {
		return types.Point{}, fmt.Errorf("invalid point X %q", p.X)
	}
	y, ok := new(big.Int).SetString(p.Y, 10)
	if !ok {
		return types.Point{}, fmt.Errorf("invalid point Y %q", p.Y)
	}
	return types.Point{X: x, Y: y}, nil
}

func pointToJSON(p types.Point) pointJSON {
	if p.IsInfinity {
		return pointJSON{IsInfinity: true}
	}
	return pointJSON{X: p.X.String(), Y: p.Y.String()}
}

type ciphertextJSON struct {
	C1 pointJSON `json:"c1"`
	C2 pointJSON `json:"c2"`
}

func ciphertextToJSON(ct types.Ciphertext) ciphertextJSON {
	return ciphertextJSON{C1: pointToJSON(ct.C1), C2: pointToJSON(ct.C2)}
}

// roundRequest is the wire form of one round's types.Input.
type roundRequest struct {
	StudentPrefs      [types.NumStudents][types.MaxPrefs]int `json:"student_prefs"`
	CollegePrefs      [types.NumColleges][types.NumStudents]int `json:"college_prefs"`
	CollegeCapacities [types.NumColleges]int                    `json:"college_capacities"`
	StudentPubkeys    [types.NumStudents]pointJSON              `json:"student_pubkeys"`
	CollegePubkeys    [types.NumColleges]pointJSON              `json:"college_pubkeys"`
	ActualStudentList int                                       `json:"actual_student_list"`
	ActualUniList     int                                       `json:"actual_uni_list"`
	NonceSeed         string                                    `json:"nonce_seed"`
	PermutationSeed   string                                    `json:"permutation_seed"`
}

// toInput converts the wire request into types.Input, rejecting anything
// that violates spec.md §3's row invariants as types.ErrInvalidInput
// (spec.md §7) rather than an ad hoc string, so callers can
// errors.Is(err, types.ErrInvalidInput) instead of matching on text.
func (r roundRequest) toInput() (types.Input, error) {
	var in types.Input
	in.StudentPrefs = r.StudentPrefs
	in.CollegePrefs = r.CollegePrefs
	in.CollegeCapacities = r.CollegeCapacities
	in.ActualStudentList = r.ActualStudentList
	in.ActualUniList = r.ActualUniList

	if r.ActualStudentList < 0 || r.ActualStudentList > types.NumStudents {
		return in, fmt.Errorf("%w: actual_student_list %d out of range [0,%d]", types.ErrInvalidInput, r.ActualStudentList, types.NumStudents)
	}
	if r.ActualUniList < 0 || r.ActualUniList > types.NumColleges {
		return in, fmt.Errorf("%w: actual_uni_list %d out of range [0,%d]", types.ErrInvalidInput, r.ActualUniList, types.NumColleges)
	}
	for i, cap := range r.CollegeCapacities {
		if cap < 0 || cap > types.MaxCapacity {
			return in, fmt.Errorf("%w: college_capacities[%d]=%d exceeds MaxCapacity %d", types.ErrInvalidInput, i, cap, types.MaxCapacity)
		}
	}

	nonceSeed, ok := new(big.Int).SetString(r.NonceSeed, 10)
	if !ok {
		return in, fmt.Errorf("%w: invalid nonce_seed %q", types.ErrInvalidInput, r.NonceSeed)
	}
	permSeed, ok := new(big.Int).SetString(r.PermutationSeed, 10)
	if !ok {
		return in, fmt.Errorf("%w: invalid permutation_seed %q", types.ErrInvalidInput, r.PermutationSeed)
	}
	in.NonceSeed = nonceSeed
	in.PermutationSeed = permSeed

	for i, pj := range r.StudentPubkeys {
		p, err := pj.toPoint()
		if err != nil {
			return in, fmt.Errorf("%w: student_pubkeys[%d]: %v", types.ErrInvalidInput, i, err)
		}
		in.StudentPubkeys[i] = p
	}
	for i, pj := range r.CollegePubkeys {
		p, err := pj.toPoint()
		if err != nil {
			return in, fmt.Errorf("%w: college_pubkeys[%d]: %v", types.ErrInvalidInput, i, err)
		}
		in.CollegePubkeys[i] = p
	}
	return in, nil
}

// roundResponse is the wire form of session.Result plus a serialized
// Groth16 proof attesting its consistency.
type roundResponse struct {
	StudentMatches  [types.NumStudents]int                        `json:"student_matches"`
	CollegeMatches  [types.NumColleges][types.MaxCapacity]int     `json:"college_matches"`
	Ciphertexts     [types.TotalCap]ciphertextJSON                `json:"ciphertexts"`
	MerkleRoot      string                                        `json:"merkle_root"`
	InputCommitment string                                        `json:"input_commitment"`
	Proof           string                                        `json:"proof"`
}

// handleRound runs session.Solve over the request and returns the public
// outcome plus a Groth16 proof that it is consistent with the request's
// public commitment inputs.
func (a *APIServer) handleRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !a.limiter.Allow(r.RemoteAddr) {
		a.metrics.RecordError("rate_limited")
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var req roundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	input, err := req.toInput()
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid input: %v", err), http.StatusBadRequest)
		return
	}

	result := session.Solve(input)
	if err := session.VerifyInputCommitment(input, result.InputCommitment); err != nil {
		a.metrics.RecordError("commitment_mismatch")
		http.Error(w, fmt.Sprintf("internal error: %v", err), http.StatusInternalServerError)
		return
	}

	assignment := buildAssignment(input, result)
	proof, err := circuit.Prove(a.ccs, a.pk, assignment)
	if err != nil {
		a.metrics.RecordError("proof_generation")
		http.Error(w, fmt.Sprintf("proof generation failed: %v", err), http.StatusInternalServerError)
		return
	}

	resp := roundResponse{
		StudentMatches:  result.StudentMatches,
		MerkleRoot:      result.MerkleRoot.String(),
		InputCommitment: result.InputCommitment.String(),
		Proof:           hex.EncodeToString(proof),
	}
	for i, ca := range result.CollegeMatches {
		resp.CollegeMatches[i] = [types.MaxCapacity]int(ca)
	}
	for i, ct := range result.Ciphertexts {
		resp.Ciphertexts[i] = ciphertextToJSON(ct)
	}

	matched := 0
	for _, c := range result.StudentMatches {
		if c != types.Unmatched {
			matched++
		}
	}
	a.metrics.RecordRound(result.InputCommitment.String(), matched, types.NumStudents-matched)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// pairJSON is the wire form of a types.Pair.
type pairJSON struct {
	ID         int `json:"id"`
	HospitalID int `json:"hospital_id"`
}

// edgeJSON is the wire form of a types.Edge.
type edgeJSON struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// kidneyRoundRequest is the wire form of one Variant B round's
// types.KidneyInput plus per-pair pubkeys.
type kidneyRoundRequest struct {
	Pairs           [types.MaxPairs]pairJSON `json:"pairs"`
	NumPairs        int                      `json:"num_pairs"`
	Edges           [types.MaxEdges]edgeJSON `json:"edges"`
	NumEdges        int                      `json:"num_edges"`
	Pubkeys         [types.MaxPairs]pointJSON `json:"pubkeys"`
	NonceSeed       string                   `json:"nonce_seed"`
	PermutationSeed string                   `json:"permutation_seed"`
}

type kidneyRoundResponse struct {
	Matches         [types.MaxPairs]int           `json:"matches"`
	Ciphertexts     [types.MaxPairs]ciphertextJSON `json:"ciphertexts"`
	MerkleRoot      string                         `json:"merkle_root"`
	InputCommitment string                         `json:"input_commitment"`
}

// handleKidneyRound runs session.SolveKidney over the request and
// returns each pair's encrypted outcome plus the round's commitment and
// Merkle root. Unlike /round, this endpoint returns no Groth16 proof:
// the matching circuit only constrains the Variant A envelope (see
// DESIGN.md's Final adaptation pass), so Variant B rounds are trust-the-
// solver the way the teacher's own off-circuit helpers are for anything
// its circuits don't cover.
func (a *APIServer) handleKidneyRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !a.limiter.Allow(r.RemoteAddr) {
		a.metrics.RecordError("rate_limited")
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var req kidneyRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}

	if req.NumPairs < 0 || req.NumPairs > types.MaxPairs {
		http.Error(w, fmt.Sprintf("%v: num_pairs %d out of range [0,%d]", types.ErrInvalidInput, req.NumPairs, types.MaxPairs), http.StatusBadRequest)
		return
	}
	if req.NumEdges < 0 || req.NumEdges > types.MaxEdges {
		http.Error(w, fmt.Sprintf("%v: num_edges %d out of range [0,%d]", types.ErrInvalidInput, req.NumEdges, types.MaxEdges), http.StatusBadRequest)
		return
	}

	var input types.KidneyInput
	input.NumPairs = req.NumPairs
	input.NumEdges = req.NumEdges
	for i, pj := range req.Pairs {
		input.Pairs[i] = types.Pair{ID: pj.ID, HospitalID: pj.HospitalID}
	}
	for i, ej := range req.Edges {
		input.Edges[i] = types.Edge{From: ej.From, To: ej.To}
	}

	var pubkeys [types.MaxPairs]types.Point
	for i, pj := range req.Pubkeys {
		p, err := pj.toPoint()
		if err != nil {
			http.Error(w, fmt.Sprintf("%v: pubkeys[%d]: %v", types.ErrInvalidInput, i, err), http.StatusBadRequest)
			return
		}
		pubkeys[i] = p
	}

	nonceSeed, ok := new(big.Int).SetString(req.NonceSeed, 10)
	if !ok {
		http.Error(w, fmt.Sprintf("%v: invalid nonce_seed", types.ErrInvalidInput), http.StatusBadRequest)
		return
	}
	permSeed, ok := new(big.Int).SetString(req.PermutationSeed, 10)
	if !ok {
		http.Error(w, fmt.Sprintf("%v: invalid permutation_seed", types.ErrInvalidInput), http.StatusBadRequest)
		return
	}

	result := session.SolveKidney(input, pubkeys, nonceSeed, permSeed)

	resp := kidneyRoundResponse{
		Matches:         result.Matches,
		MerkleRoot:      result.MerkleRoot.String(),
		InputCommitment: result.InputCommitment.String(),
	}
	for i, ct := range result.Ciphertexts {
		resp.Ciphertexts[i] = ciphertextToJSON(ct)
	}

	matched := 0
	for p := 0; p < input.NumPairs; p++ {
		if result.Matches[p] != types.Unmatched {
			matched++
		}
	}
	a.metrics.RecordRound(result.InputCommitment.String(), matched, input.NumPairs-matched)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// claimRequest carries a caller's own scalar private key and the
// ciphertext slot addressed to them.
type claimRequest struct {
	Sk         string         `json:"sk"`
	Ciphertext ciphertextJSON `json:"ciphertext"`
}

type claimResponse struct {
	Match int `json:"match"`
}

// handleClaim decrypts one ciphertext slot with the caller-supplied
// scalar key, the REST counterpart of session.ClaimMatch — the teacher's
// handleTx plays the same role for its own decrypt-then-record flow.
func (a *APIServer) handleClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	sk, ok := new(big.Int).SetString(req.Sk, 10)
	if !ok {
		http.Error(w, "invalid sk", http.StatusBadRequest)
		return
	}
	c1, err := req.Ciphertext.C1.toPoint()
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid ciphertext.c1: %v", err), http.StatusBadRequest)
		return
	}
	c2, err := req.Ciphertext.C2.toPoint()
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid ciphertext.c2: %v", err), http.StatusBadRequest)
		return
	}

	match, err := session.ClaimMatch(sk, types.Ciphertext{C1: c1, C2: c2})
	if err != nil {
		a.metrics.RecordError("claim_failed")
		http.Error(w, fmt.Sprintf("claim failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(claimResponse{Match: match})
}
