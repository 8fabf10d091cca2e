// main.go - One-round matching scenario: 5 students, 3 colleges.
//
// This demonstrates the complete lifecycle of a Variant A matching round:
//   - students and colleges each hold an ElGamal keypair on the embedded curve
//   - the round is solved by session.Solve (permute -> deferred acceptance ->
//     encrypt -> commit)
//   - a Groth16 proof attests the outcome is cryptographically consistent
//     with the public commitment, ciphertexts and Merkle root
//   - each student recovers their own assignment via ClaimMatch, the way a
//     real client would, without ever seeing anyone else's preferences
//
// Usage:
//
//	go run ./cmd/matchd
package main

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"matchcore/internal/matching/circuit"
	"matchcore/internal/matching/curve"
	"matchcore/internal/matching/session"
	"matchcore/internal/matching/types"
)

const version = "0.1.0"

func main() {
	config, err := LoadConfig("matchd.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: loading config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := NewLogger(config.LogLevel, config.LogFile, config.AuditLogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	metrics := NewMetricsCollector()
	health := NewHealthChecker(version)
	limiter := NewCallerRateLimiter(config.MaxRoundsPerMinute, config.MaxRoundsPerMinute, time.Minute)

	logger.Info("matchd starting, version %s", version)

	if !limiter.Allow("demo-caller") {
		logger.Error("round rejected by rate limiter")
		os.Exit(1)
	}

	input, studentKeys, collegeKeys, err := buildDemoInput()
	if err != nil {
		logger.Fatal("building demo input: %v", err)
	}

	compileStart := time.Now()
	ccs, err := circuit.Compile()
	if err != nil {
		logger.Fatal("circuit compilation failed: %v", err)
	}
	metrics.RecordCircuitCompile(time.Since(compileStart))

	pk, vk, err := circuit.SetupOrLoadKeys(ccs, config.ProvingKeyPath, config.VerifyingKeyPath)
	if err != nil {
		logger.Fatal("key setup failed: %v", err)
	}

	// "circuit" reports healthy once the constraint system is compiled and
	// a non-nil key pair is loaded; "solver" tracks whether the most recent
	// round's proof generated and verified, the way the teacher's exchange
	// health checks track the last settlement rather than solver internals
	// it has no direct visibility into.
	var lastRoundErr error
	health.RegisterComponent("circuit", func() error {
		if pk == nil || vk == nil {
			return fmt.Errorf("proving/verifying keys not loaded")
		}
		if ccs.GetNbConstraints() == 0 {
			return fmt.Errorf("circuit has no constraints")
		}
		return nil
	})
	health.RegisterComponent("solver", func() error {
		return lastRoundErr
	})

	solveStart := time.Now()
	result := session.Solve(input)
	logger.Audit("round_solved", map[string]interface{}{
		"duration_ms": time.Since(solveStart).Milliseconds(),
	})
	if err := session.VerifyInputCommitment(input, result.InputCommitment); err != nil {
		logger.Fatal("round commitment self-check failed: %v", err)
	}

	roundID := fmt.Sprintf("round-%d", input.PermutationSeed)
	matched := 0
	for _, c := range result.StudentMatches {
		if c != types.Unmatched {
			matched++
		}
	}
	metrics.RecordRound(roundID, matched, types.NumStudents-matched)
	metrics.RecordSolverPasses(1)

	PrintRoundSummary(roundID, result.StudentMatches, result.CollegeMatches)

	assignment := buildAssignment(input, result)

	proveStart := time.Now()
	proof, err := circuit.Prove(ccs, pk, assignment)
	if err != nil {
		lastRoundErr = err
		metrics.RecordError("proof_generation")
		logger.Fatal("proof generation failed: %v", err)
	}
	metrics.RecordProofGeneration(time.Since(proveStart))

	verifyErr := circuit.Verify(vk, assignment, proof)
	PrintProofStatus(roundID, verifyErr == nil)
	lastRoundErr = verifyErr
	if verifyErr != nil {
		metrics.RecordError("proof_verification")
		logger.Error("proof verification failed: %v", verifyErr)
	} else {
		logger.Info("proof verified for %s", roundID)
	}

	// Each student claims their own match the way a client would: decrypt
	// the ciphertext addressed to them with their own private key.
	for s := 0; s < types.NumStudents; s++ {
		claimed, err := session.ClaimMatch(studentKeys[s].Sk.BigInt(new(big.Int)), result.Ciphertexts[s])
		if err != nil {
			logger.Warn("student %d failed to claim match: %v", s, err)
			continue
		}
		if claimed != result.StudentMatches[s] {
			logger.Error("student %d claimed college %d but solver assigned %d", s, claimed, result.StudentMatches[s])
		}
	}

	// Each college claims its own occupants the same way, over its
	// MaxCapacity ciphertext slots starting after the student block.
	for c := 0; c < types.NumColleges; c++ {
		for slot := 0; slot < types.MaxCapacity; slot++ {
			idx := types.NumStudents + c*types.MaxCapacity + slot
			claimed, err := session.ClaimMatch(collegeKeys[c].Sk.BigInt(new(big.Int)), result.Ciphertexts[idx])
			if err != nil {
				logger.Warn("college %d slot %d failed to claim: %v", c, slot, err)
				continue
			}
			if claimed != result.CollegeMatches[c][slot] {
				logger.Error("college %d slot %d claimed student %d but solver assigned %d", c, slot, claimed, result.CollegeMatches[c][slot])
			}
		}
	}

	PrintHealth(health.CheckHealth())

	summary := metrics.GetMetricsSummary()
	logger.Info("round complete: %+v", summary)

	if config.RestPort != 0 {
		api := NewAPIServer(ccs, pk, vk, logger, metrics, limiter)
		api.RunServer(config.RestPort)
		logger.Info("REST surface available on :%d (/round, /kidney-round, /claim)", config.RestPort)
		select {}
	}
}

// buildDemoInput constructs a fixed 5-student/3-college regression vector
// (spec.md's E1 instance size) with fresh ElGamal keypairs, the way an
// integration test would, for a runnable end-to-end demo.
func buildDemoInput() (types.Input, [types.NumStudents]curve.KeyPair, [types.NumColleges]curve.KeyPair, error) {
	var studentKeys [types.NumStudents]curve.KeyPair
	var collegeKeys [types.NumColleges]curve.KeyPair
	var input types.Input

	for s := 0; s < types.NumStudents; s++ {
		kp, err := curve.GenerateKeyPair()
		if err != nil {
			return input, studentKeys, collegeKeys, fmt.Errorf("student %d keygen: %w", s, err)
		}
		studentKeys[s] = kp
		input.StudentPubkeys[s] = curve.ToPoint(kp.Pk)
	}
	for c := 0; c < types.NumColleges; c++ {
		kp, err := curve.GenerateKeyPair()
		if err != nil {
			return input, studentKeys, collegeKeys, fmt.Errorf("college %d keygen: %w", c, err)
		}
		collegeKeys[c] = kp
		input.CollegePubkeys[c] = curve.ToPoint(kp.Pk)
	}

	u := types.Unmatched
	input.StudentPrefs = types.StudentPrefs{
		{0, 1, 2, u, u},
		{1, 0, 2, u, u},
		{0, 2, 1, u, u},
		{2, 1, 0, u, u},
		{1, 2, 0, u, u},
	}
	input.CollegePrefs = types.CollegePrefs{
		{2, 0, 4, 1, 3},
		{4, 1, 3, 0, 2},
		{0, 3, 1, 4, 2},
	}
	input.CollegeCapacities = types.Capacities{2, 2, 1}
	input.ActualStudentList = types.NumStudents
	input.ActualUniList = types.NumColleges
	input.NonceSeed = big.NewInt(42)
	input.PermutationSeed = big.NewInt(7)

	return input, studentKeys, collegeKeys, nil
}

// buildAssignment converts a solved round into the circuit's witness
// assignment, mirroring the teacher's toGnarkPoint-and-populate pattern in
// cmd/auctiond/main.go.
func buildAssignment(input types.Input, result session.Result) *circuit.MatchingCircuit {
	c := &circuit.MatchingCircuit{
		Operation:       circuit.OpSolve,
		InputCommitment: result.InputCommitment,
		MerkleRoot:      result.MerkleRoot,
		NonceSeed:       input.NonceSeed,
	}

	for i := 0; i < types.TotalCap; i++ {
		c.Ciphertexts[i] = circuit.AssignCiphertext(result.Ciphertexts[i])
	}
	for s := 0; s < types.NumStudents; s++ {
		c.StudentPubkeys[s] = circuit.AssignPoint(input.StudentPubkeys[s])
		for j := 0; j < types.MaxPrefs; j++ {
			c.StudentPrefs[s][j] = input.StudentPrefs[s][j]
		}
		c.StudentMatches[s] = result.StudentMatches[s]
	}
	for cID := 0; cID < types.NumColleges; cID++ {
		c.CollegePubkeys[cID] = circuit.AssignPoint(input.CollegePubkeys[cID])
		for j := 0; j < types.NumStudents; j++ {
			c.CollegePrefs[cID][j] = input.CollegePrefs[cID][j]
		}
		c.CollegeCapacities[cID] = input.CollegeCapacities[cID]
		for slot := 0; slot < types.MaxCapacity; slot++ {
			c.CollegeMatches[cID][slot] = result.CollegeMatches[cID][slot]
		}
	}

	return c
}
