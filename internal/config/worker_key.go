package config

type WorkerKeyStruct struct {
	PersistAnswersQueue    string
	PersistPlacementsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue:    "persist_answers_queue",
	PersistPlacementsQueue: "persist_placements_queue",
}
