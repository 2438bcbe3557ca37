package query

const connectionLostDocument = `
query {
    groups {
        result {
            name
            resourceSelectors {
                resource {
                    name
                    state {
                        status
                    }
                }
            }
        }
    }
}
`

const incomingEventsDocument = `
query {
  incomingEvents (
    limit: 500
    filter: {
      filterBy:{field:START_TIME operator:GT values:"2025-01-01T00:00:00"}
    }
  ) {
    result {
      name
      startTime
      scheduleTimezone
      plan { planActions { name, resourceGroups { totalNumberOfResources } } }
      estimatedEndTime
      status
    }
    pageInfo {
      count
    }
  }
}
`

const patchReportDocument = `
query {
  events(
    limit: 500
    filter: {
      filterBy:{field:START_TIME operator:GT values:"2025-02-01T00:00:00"}
    }
  ) {
    result {
      name
      startTime
      status
      actions {
        actionName
        type
        globalState { status }
        attempts {
          attempt
          state { status }
          resourceStates {
            resourceId
            status
            annotation
            resource {
              name
              provider
              fullCloudResourceId
            }
          }
        }
      }
    }
    pageInfo {
      count
    }
  }
}
`
