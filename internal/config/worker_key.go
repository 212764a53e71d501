package config

type WorkerKeyStruct struct {
	PersistCertificatesQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistCertificatesQueue: "persist_certificates_queue",
}
