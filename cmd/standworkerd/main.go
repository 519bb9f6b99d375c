package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/aleti000/deploy-stand/pkg/jobqueue"
	"github.com/aleti000/deploy-stand/pkg/kv"
	"github.com/armon/go-metrics"
	mapsink "github.com/bakins/go-metrics-map"
	"github.com/kr/beanstalk"
	flag "github.com/ogier/pflag"
	log "github.com/sirupsen/logrus"
)

func main() {
	var port uint
	var kvAddr, bstalk, logLevel, pveAddr, pveToken string
	var pveInsecure bool

	// Command line flags
	flag.StringVarP(&bstalk, "beanstalk", "b", "127.0.0.1:11300", "address of beanstalkd server")
	flag.StringVarP(&logLevel, "log-level", "l", "warn", "log level")
	flag.StringVarP(&kvAddr, "kv", "k", "http://127.0.0.1:8500", "address of kv machine")
	flag.StringVarP(&pveAddr, "proxmox", "a", "https://127.0.0.1:8006", "address of proxmox cluster api")
	flag.StringVarP(&pveToken, "proxmox-token", "t", "", "proxmox api token (user@realm!tokenid=secret)")
	flag.BoolVarP(&pveInsecure, "proxmox-insecure", "i", false, "skip proxmox tls verification")
	flag.UintVarP(&port, "http", "p", 7544, "http port to publish metrics. set to 0 to disable")
	flag.Parse()

	// Set up logger
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"level": logLevel,
		}).Fatal("unable to to set up logrus")
	}
	log.SetLevel(level)
	log.SetFormatter(&log.JSONFormatter{})

	e, err := kv.New(kvAddr)
	if err != nil {
		log.WithFields(log.Fields{
			"addr":  kvAddr,
			"error": err,
		}).Fatal("unable to connect to kv")
	}

	log.WithField("address", bstalk).Info("connection to beanstalk")
	jobQueue, err := jobqueue.NewClient(bstalk, e)
	if err != nil {
		log.WithFields(log.Fields{
			"error":   err,
			"address": bstalk,
		}).Fatal("failed to create jobQueue client")
	}

	// Set up metrics
	m := setupMetrics(port)

	deployer := deploystand.NewDeployer(newExecutor(pveAddr, pveToken, pveInsecure))

	// Start consuming
	consume(jobQueue, deployer, m)
}

func consume(jobQueue *jobqueue.Client, deployer *deploystand.Deployer, m *metrics.Metrics) {
	for {
		// Wait for and reserve a job
		task, err := jobQueue.NextDeployTask()
		if err != nil {
			if bCE, ok := err.(beanstalk.ConnError); ok {
				switch bCE {
				case beanstalk.ErrTimeout:
					// Empty queue, continue waiting
					continue
				case beanstalk.ErrDeadline:
					// See docs on beanstalkd deadline
					// We're just going to sleep to let the deadline'd job expire
					// and try to get another job
					m.IncrCounter([]string{"beanstalk", "error", "deadline"}, 1)
					log.Debug(beanstalk.ErrDeadline)
					time.Sleep(5 * time.Second)
					continue
				default:
					// You have failed me for the last time
					log.WithField("error", err).Fatal(err)
				}
			}

			log.WithFields(log.Fields{
				"task":  task,
				"error": err,
			}).Error("invalid task")

			if err := task.Delete(); err != nil {
				log.WithFields(log.Fields{
					"task":  task.ID,
					"error": err,
				}).Error("unable to delete")
			}
			continue
		}

		logFields := log.Fields{
			"task": task.ID,
			"job":  task.JobID,
		}

		// Handle the task in its current state. Remove task when appropriate.
		removeTask, err := processTask(task, deployer)

		if removeTask {
			if err != nil {
				log.WithFields(logFields).WithField("error", err).Error(err)
				if task.Job != nil {
					_ = updateJobStatus(task, jobqueue.JobStatusError, err)
				}
			} else {
				_ = updateJobStatus(task, jobqueue.JobStatusDone, nil)
			}
			if task.Job != nil {
				log.WithFields(logFields).WithField("status", task.Job.Status).Info("job status info")
			}

			updateMetrics(task, m)

			log.WithFields(logFields).Info("removing task")
			if err := task.Delete(); err != nil {
				log.WithFields(log.Fields{
					"task":  task.ID,
					"error": err,
				}).Error("unable to delete")
			}
		} else {
			log.WithFields(logFields).Info("releasing task")
			if err := task.Release(); err != nil {
				log.WithFields(logFields).WithField("error", err).Fatal(err)
			}
		}
	}
}

// setupMetrics creates the metric sink and starts an optional http server
func setupMetrics(port uint) *metrics.Metrics {
	ms := mapsink.New()
	conf := metrics.DefaultConfig("standworkerd")
	conf.EnableHostname = false
	m, _ := metrics.New(conf, ms)

	// Unless told not to, expose metrics via http
	if port != 0 {
		http.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(ms)
		}))

		go func() {
			log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), nil))
		}()
	}

	return m
}

func processTask(task *jobqueue.Task, deployer *deploystand.Deployer) (bool, error) {
	logFields := log.Fields{
		"task": task.ID,
		"job":  task.JobID,
	}
	log.WithFields(logFields).Info("reserved task")

	switch task.Job.Status {
	case jobqueue.JobStatusDone, jobqueue.JobStatusError:
		return true, nil
	case jobqueue.JobStatusWorking:
		// A working job on the queue means a previous worker died mid
		// deployment. Machines may or may not exist; don't run it again.
		return true, errors.New("deployment was interrupted")
	case jobqueue.JobStatusNew:
		if err := updateJobStatus(task, jobqueue.JobStatusWorking, nil); err != nil {
			return true, err
		}
		return true, runDeploy(task, deployer)
	}

	return false, nil
}

// runDeploy realizes the task's deployment and records the outcome on the
// deployment record
func runDeploy(task *jobqueue.Task, deployer *deploystand.Deployer) error {
	deployment := task.Deployment
	if deployment == nil {
		return errors.New("deployment does not exist")
	}

	deployment.Status = deploystand.DeploymentStatusWorking
	deployment.StartedAt = time.Now()
	if err := deployment.Save(); err != nil {
		return err
	}

	deployErr := func() error {
		stand, err := deployment.Stand()
		if err != nil {
			return err
		}

		resolution, err := stand.Resolve(deploystand.TagPolicyTrunk)
		if err != nil {
			return err
		}

		vmids, err := deployer.Deploy(stand, resolution, deployment.Placements, deployment.Pool)
		deployment.VMIDs = vmids
		return err
	}()

	deployment.FinishedAt = time.Now()
	if deployErr != nil {
		deployment.Status = deploystand.DeploymentStatusError
		deployment.Error = deployErr.Error()
	} else {
		deployment.Status = deploystand.DeploymentStatusDone
	}
	if err := deployment.Save(); err != nil {
		log.WithFields(log.Fields{
			"deployment": deployment.ID,
			"error":      err,
		}).Error("unable to save")
		if deployErr == nil {
			return err
		}
	}
	return deployErr
}

func updateJobStatus(task *jobqueue.Task, status string, e error) error {
	task.Job.Status = status
	if e != nil {
		task.Job.Error = e.Error()
	}
	if task.Job.StartedAt.Equal(time.Time{}) {
		task.Job.StartedAt = time.Now()
	}
	if status == jobqueue.JobStatusError || status == jobqueue.JobStatusDone {
		task.Job.FinishedAt = time.Now()
	}

	// Save Job Status
	if err := task.Job.Save(); err != nil {
		log.WithFields(log.Fields{
			"task":  task.ID,
			"error": err,
		}).Error("unable to save")
		return err
	}
	return nil
}

func updateMetrics(task *jobqueue.Task, m *metrics.Metrics) {
	job := task.Job
	if job == nil {
		return
	}
	m.MeasureSince([]string{"action", job.Action, "time"}, job.StartedAt)
	m.MeasureSince([]string{"action", "time"}, job.StartedAt)
	m.IncrCounter([]string{"action", job.Action, "count"}, 1)
	m.IncrCounter([]string{"action", "count"}, 1)
	if job.Error != "" {
		m.IncrCounter([]string{"action", job.Action, "error"}, 1)
		m.IncrCounter([]string{"action", "error"}, 1)
	}
}
